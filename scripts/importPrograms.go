package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"elearning/config"
	"elearning/database"
	"elearning/models"
	"elearning/services"
	"elearning/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Expected columns: title,description,type,priceIdr,availableDate,thumbnailUrl,modules
// modules is a "|" separated list of module titles and is only read for courses.
const dateLayout = "2006-01-02"

type importStats struct {
	Inserted int
	Updated  int
	Skipped  int
	Modules  int
}

func main() {
	path := "programs.csv"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}

	// Load config and connect to database
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	db, err := database.ConnectDb(cfg, logger)
	if err != nil {
		logger.Fatalw("Failed to connect database", "error", err)
	}

	file, err := os.Open(path)
	if err != nil {
		logger.Fatalw("Failed to open CSV file", "path", path, "error", err)
	}
	defer file.Close()

	stats, err := importPrograms(context.Background(), db, logger, file)
	if err != nil {
		logger.Fatalw("Import failed", "error", err)
	}
	logger.Infow("=== Import Complete ===",
		"inserted", stats.Inserted, "updated", stats.Updated, "skipped", stats.Skipped, "modules", stats.Modules)
}

func importPrograms(ctx context.Context, db *gorm.DB, logger *zap.SugaredLogger, r io.Reader) (importStats, error) {
	var stats importStats

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return stats, fmt.Errorf("read csv: %w", err)
	}
	if len(records) < 2 {
		return stats, errors.New("CSV file is empty or has only headers")
	}

	// Map header indices
	headerIndex := make(map[string]int)
	for i, h := range records[0] {
		headerIndex[strings.TrimSpace(h)] = i
	}

	programs := services.NewProgramService(services.Deps{DB: db, Log: logger})

	for i, row := range records[1:] {
		line := i + 2
		input, modules, err := parseRow(row, headerIndex)
		if err != nil {
			logger.Warnw("Skipping row", "line", line, "error", err)
			stats.Skipped++
			continue
		}

		var existing models.Program
		err = db.WithContext(ctx).Where("title = ? AND type = ?", input.Title, input.Type).First(&existing).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			created, err := programs.Create(ctx, input)
			if err != nil {
				logger.Warnw("Error inserting program", "line", line, "title", input.Title, "error", err)
				stats.Skipped++
				continue
			}
			existing = *created
			stats.Inserted++
		case err != nil:
			return stats, fmt.Errorf("lookup program %q: %w", input.Title, err)
		default:
			_, err := programs.Update(ctx, existing.ID, services.ProgramPatch{
				Description:   &input.Description,
				ThumbnailURL:  input.ThumbnailURL,
				PriceIdr:      &input.PriceIdr,
				AvailableDate: &input.AvailableDate,
			})
			if err != nil {
				logger.Warnw("Error updating program", "line", line, "title", input.Title, "error", err)
				stats.Skipped++
				continue
			}
			stats.Updated++
		}

		if existing.Type != models.ProgramCourse {
			continue
		}
		added, err := addMissingModules(ctx, programs, existing.ID, modules)
		if err != nil {
			return stats, err
		}
		stats.Modules += added
	}
	return stats, nil
}

func parseRow(row []string, headerIndex map[string]int) (services.ProgramInput, []string, error) {
	in := services.ProgramInput{
		Title:       getField(row, headerIndex, "title"),
		Description: getField(row, headerIndex, "description"),
		Type:        models.ProgramType(getField(row, headerIndex, "type")),
	}
	if in.Title == "" {
		return in, nil, errors.New("missing title")
	}
	if !in.Type.Valid() {
		return in, nil, fmt.Errorf("unknown type %q", in.Type)
	}

	if raw := getField(row, headerIndex, "priceIdr"); raw != "" {
		price, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || price < 0 {
			return in, nil, fmt.Errorf("invalid priceIdr %q", raw)
		}
		in.PriceIdr = price
	}

	available, err := time.Parse(dateLayout, getField(row, headerIndex, "availableDate"))
	if err != nil {
		return in, nil, fmt.Errorf("invalid availableDate: %w", err)
	}
	in.AvailableDate = available

	if thumb := getField(row, headerIndex, "thumbnailUrl"); thumb != "" {
		in.ThumbnailURL = &thumb
	}

	var modules []string
	for _, title := range strings.Split(getField(row, headerIndex, "modules"), "|") {
		if title = strings.TrimSpace(title); title != "" {
			modules = append(modules, title)
		}
	}
	return in, modules, nil
}

// addMissingModules appends the modules whose title the course does not have yet.
func addMissingModules(ctx context.Context, programs *services.ProgramService, programID uint, titles []string) (int, error) {
	if len(titles) == 0 {
		return 0, nil
	}
	current, err := programs.ListModules(ctx, programID)
	if err != nil {
		return 0, err
	}
	have := make(map[string]bool, len(current))
	for _, m := range current {
		have[m.Title] = true
	}

	added := 0
	for _, title := range titles {
		if have[title] {
			continue
		}
		if _, err := programs.CreateModule(ctx, programID, services.ModuleInput{Title: title}); err != nil {
			return added, err
		}
		have[title] = true
		added++
	}
	return added, nil
}

// getField safely gets a field from the row by header name
func getField(row []string, headerIndex map[string]int, field string) string {
	if idx, ok := headerIndex[field]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
