package main

import (
	"encoding/json"
	"errors"
	"flag"
	"log"
	"os"

	"gorm.io/gorm"

	"github.com/IstyxI/foodgram/config"
	"github.com/IstyxI/foodgram/internal/database"
	"github.com/IstyxI/foodgram/internal/models"
)

type tagSeed struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type ingredientSeed struct {
	Name            string `json:"name"`
	MeasurementUnit string `json:"measurement_unit"`
}

// Loads tag and ingredient reference data from JSON files. Existing entries
// are skipped, so the command is safe to re-run.
func main() {
	tagsPath := flag.String("tags", "data/tags.json", "path to the tags JSON file")
	ingredientsPath := flag.String("ingredients", "data/ingredients.json", "path to the ingredients JSON file")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.NewGorm(cfg)
	if err != nil {
		log.Fatalf("Failed to open ORM connection: %v", err)
	}
	if err := database.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	if err := seedTags(db, *tagsPath); err != nil {
		log.Fatalf("Failed to seed tags: %v", err)
	}
	if err := seedIngredients(db, *ingredientsPath); err != nil {
		log.Fatalf("Failed to seed ingredients: %v", err)
	}
}

func seedTags(db *gorm.DB, path string) error {
	var seeds []tagSeed
	if err := readJSON(path, &seeds); err != nil {
		return err
	}

	created := 0
	for _, seed := range seeds {
		tag := models.Tag{Name: seed.Name, Slug: seed.Slug}
		if err := db.Create(&tag).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		created++
	}
	log.Printf("Seeded %d tags (%d skipped)", created, len(seeds)-created)
	return nil
}

func seedIngredients(db *gorm.DB, path string) error {
	var seeds []ingredientSeed
	if err := readJSON(path, &seeds); err != nil {
		return err
	}

	created := 0
	for _, seed := range seeds {
		ingredient := models.Ingredient{Name: seed.Name, MeasurementUnit: seed.MeasurementUnit}
		if err := db.Create(&ingredient).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				continue
			}
			return err
		}
		created++
	}
	log.Printf("Seeded %d ingredients (%d skipped)", created, len(seeds)-created)
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}
