package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/claude/liftwise/internal/agent"
	"github.com/claude/liftwise/internal/config"
	"github.com/claude/liftwise/internal/models"
	"github.com/claude/liftwise/internal/storage"
)

// seedFile is the YAML dataset layout. Safety rules and equipment
// alternatives extend the migration-seeded baseline; profiles optionally get
// a starter plan from the built-in templates.
type seedFile struct {
	Contraindications []seedRule        `yaml:"contraindications"`
	Alternatives      map[string]string `yaml:"equipment_alternatives"`
	Profiles          []seedProfile     `yaml:"profiles"`
}

type seedRule struct {
	Condition        string   `yaml:"condition"`
	ExercisesToAvoid []string `yaml:"exercises_to_avoid"`
}

type seedProfile struct {
	UserID            string   `yaml:"user_id"`
	Goals             []string `yaml:"goals"`
	FitnessLevel      string   `yaml:"fitness_level"`
	MedicalConditions []string `yaml:"medical_conditions"`
	WorkoutFrequency  int      `yaml:"workout_frequency"`
	CreatePlan        bool     `yaml:"create_plan"`
}

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	dataPath := flag.String("data", "", "path to a YAML seed file (required)")
	dryRun := flag.Bool("dry-run", false, "report counts without inserting into database")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *dataPath == "" {
		fmt.Fprintf(os.Stderr, "Usage: liftwise-seed -config config.yaml -data seed.yaml [-dry-run]\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	seed, err := loadSeed(*dataPath)
	if err != nil {
		log.Error("failed to load seed data", "path", *dataPath, "error", err)
		os.Exit(1)
	}
	log.Info("seed data loaded",
		"contraindications", len(seed.Contraindications),
		"equipment_alternatives", len(seed.Alternatives),
		"profiles", len(seed.Profiles),
	)

	if *dryRun {
		log.Info("DRY RUN mode — no data will be written to the database")
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	dsn := cfg.Database.DSN()
	if err := storage.RunMigrations(dsn, "migrations"); err != nil {
		log.Error("migration failed", "error", err)
		os.Exit(1)
	}
	log.Info("migrations applied")

	ctx := context.Background()
	db, err := storage.New(ctx, dsn)
	if err != nil {
		log.Error("failed to connect database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	log.Info("database connected")

	if err := apply(ctx, db, seed, log); err != nil {
		log.Error("seed failed", "error", err)
		os.Exit(1)
	}
	log.Info("seed complete")
}

func loadSeed(path string) (*seedFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading seed file: %w", err)
	}
	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &seed, nil
}

func apply(ctx context.Context, db *storage.DB, seed *seedFile, log *slog.Logger) error {
	for _, rule := range seed.Contraindications {
		err := db.UpsertContraindication(ctx, models.ContraindicationRule{
			Condition:        rule.Condition,
			ExercisesToAvoid: rule.ExercisesToAvoid,
		})
		if err != nil {
			return fmt.Errorf("seeding rule %q: %w", rule.Condition, err)
		}
	}
	if len(seed.Contraindications) > 0 {
		log.Info("contraindications seeded", "count", len(seed.Contraindications))
	}

	for equipment, alternative := range seed.Alternatives {
		if err := db.UpsertEquipmentAlternative(ctx, equipment, alternative); err != nil {
			return fmt.Errorf("seeding alternative for %q: %w", equipment, err)
		}
	}
	if len(seed.Alternatives) > 0 {
		log.Info("equipment alternatives seeded", "count", len(seed.Alternatives))
	}

	// Starter plans come from the deterministic templates.
	generator := agent.NewGenerator(nil, log)

	for _, sp := range seed.Profiles {
		profile := &models.UserProfile{
			UserID:            sp.UserID,
			Goals:             sp.Goals,
			FitnessLevel:      sp.FitnessLevel,
			MedicalConditions: sp.MedicalConditions,
			Preferences:       models.Preferences{WorkoutFrequency: sp.WorkoutFrequency},
		}
		if profile.FitnessLevel == "" {
			profile.FitnessLevel = models.LevelBeginner
		}
		if err := db.UpsertProfile(ctx, profile); err != nil {
			return fmt.Errorf("seeding profile %q: %w", sp.UserID, err)
		}

		if sp.CreatePlan {
			plan := generator.GeneratePlan(ctx, profile)
			if err := db.InsertPlan(ctx, sp.UserID, plan); err != nil {
				return fmt.Errorf("seeding plan for %q: %w", sp.UserID, err)
			}
			log.Info("starter plan created", "user", sp.UserID, "plan", plan.PlanID)
		}
	}
	if len(seed.Profiles) > 0 {
		log.Info("profiles seeded", "count", len(seed.Profiles))
	}

	return nil
}
