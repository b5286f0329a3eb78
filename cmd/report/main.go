package main

import (
	"flag"
	"os"

	"github.com/fatih/color"
	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/teachteam/internal/app"
	"github.com/shrimpsizemoose/teachteam/internal/ranking"
)

func main() {
	var (
		configPath = flag.String("config", "config.toml", "Path to config file")
		course     = flag.String("course", "", "Course code, e.g. COSC2758")
		limit      = flag.Int("limit", 0, "Chart size, 0 for every shortlisted tutor")
		reverse    = flag.Bool("reverse", false, "Least popular first")
	)
	flag.Parse()

	if *course == "" {
		color.Red("-course is required")
		os.Exit(2)
	}

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	shortlist, err := service.GetShortlist(*course)
	if err != nil {
		logger.Error.Fatalf("Failed to get shortlist: %v", err)
	}
	lists, err := service.CourseRankings(*course)
	if err != nil {
		logger.Error.Fatalf("Failed to get rankings: %v", err)
	}
	scores, err := service.AggregateScores(*course, ranking.Options{Limit: *limit, Reverse: *reverse})
	if err != nil {
		logger.Error.Fatalf("Failed to compute chart: %v", err)
	}

	color.Cyan("\n=== %s ===", *course)
	renderShortlist(os.Stdout, shortlist)
	renderRankings(os.Stdout, lists)
	renderChart(os.Stdout, scores)
}
