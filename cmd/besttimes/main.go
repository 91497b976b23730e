// besttimes prints the best upcoming hours for an activity on the command
// line, going through the same cached weather supply as the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/feldcast/feldcast/internal/db"
	"github.com/feldcast/feldcast/internal/forecast"
	"github.com/feldcast/feldcast/internal/scoring"
	"github.com/feldcast/feldcast/internal/venue"
	"github.com/feldcast/feldcast/internal/weather"
)

const (
	venueLat = 52.4732
	venueLon = 13.4053
)

func main() {
	activity := flag.String("activity", "", "activity to rank (default: all)")
	limit := flag.Int("limit", 3, "number of best times to show per activity")
	flag.Parse()

	if err := run(*activity, *limit); err != nil {
		log.Fatal(err)
	}
}

func run(activityName string, limit int) error {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded .env")
	}

	activities := scoring.Activities()
	if activityName != "" {
		act, err := scoring.ParseActivity(activityName)
		if err != nil {
			return err
		}
		activities = []scoring.Activity{act}
	}

	calendar, err := venue.DefaultCalendar()
	if err != nil {
		return err
	}
	profiles, err := scoring.LoadProfiles(os.Getenv("FELDCAST_PROFILES"))
	if err != nil {
		return err
	}
	engine, err := scoring.NewEngine(profiles, calendar)
	if err != nil {
		return err
	}

	var store weather.Store
	if database, err := db.NewDB(); err != nil {
		log.Printf("Cache store unavailable, fetching without it: %v", err)
	} else {
		defer database.Close()
		store = database
	}

	wService := weather.NewService(store, calendar.Location)
	wd, err := wService.GetWeather(venueLat, venueLon)
	if err != nil {
		return fmt.Errorf("failed to get weather: %w", err)
	}

	now := time.Now()
	for _, act := range activities {
		fc := forecast.Build(engine, act, wd.Hourly, now, limit)
		fmt.Printf("%s:\n", act)
		if len(fc.BestTimes) == 0 {
			fmt.Println("  no suitable hours in the next four days")
			continue
		}
		for _, h := range fc.BestTimes {
			t := h.Time(calendar.Location)
			fmt.Printf("  %s  score %3d (%s)  %.0f°C, wind %.1f m/s, %s\n",
				t.Format("Mon 15:04"), h.Score, h.Label, h.Temp, h.WindSpeed, h.Condition.Description)
		}
	}
	return nil
}
