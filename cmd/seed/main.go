// Command seed generates synthetic taxi trip data for development and
// testing without downloading the full public dataset.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/nycmobility/taxi-analytics-go/internal/database"
	"github.com/nycmobility/taxi-analytics-go/internal/models"
	"github.com/nycmobility/taxi-analytics-go/internal/repository"
)

// Weighted hour-of-day distribution approximating NYC demand
var hourWeights = []int{2, 1, 1, 1, 2, 4, 8, 10, 8, 6, 5, 5, 5, 5, 6, 7, 8, 10, 8, 6, 5, 4, 3, 2}

type zoneSeed struct {
	id      int
	name    string
	borough string
	lat     float64
	lon     float64
}

var zoneSeeds = []zoneSeed{
	{4, "Alphabet City", "Manhattan", 40.7260, -73.9786},
	{13, "Battery Park City", "Manhattan", 40.7115, -74.0158},
	{43, "Central Park", "Manhattan", 40.7829, -73.9654},
	{45, "Chinatown", "Manhattan", 40.7158, -73.9970},
	{48, "Clinton East", "Manhattan", 40.7637, -73.9918},
	{68, "East Chelsea", "Manhattan", 40.7465, -74.0014},
	{79, "East Village", "Manhattan", 40.7265, -73.9815},
	{87, "Financial District North", "Manhattan", 40.7077, -74.0083},
	{90, "Flatiron", "Manhattan", 40.7411, -73.9897},
	{100, "Garment District", "Manhattan", 40.7547, -73.9925},
	{107, "Gramercy", "Manhattan", 40.7367, -73.9830},
	{114, "Greenwich Village South", "Manhattan", 40.7265, -74.0003},
	{132, "JFK Airport", "Queens", 40.6413, -73.7781},
	{138, "LaGuardia Airport", "Queens", 40.7769, -73.8740},
	{142, "Lincoln Square East", "Manhattan", 40.7730, -73.9840},
	{161, "Midtown Center", "Manhattan", 40.7549, -73.9797},
	{162, "Midtown East", "Manhattan", 40.7549, -73.9721},
	{186, "Penn Station/Madison Sq West", "Manhattan", 40.7505, -73.9935},
	{230, "Times Sq/Theatre District", "Manhattan", 40.7580, -73.9855},
	{234, "Union Sq", "Manhattan", 40.7359, -73.9911},
	{236, "Upper East Side North", "Manhattan", 40.7736, -73.9566},
	{237, "Upper East Side South", "Manhattan", 40.7685, -73.9608},
	{249, "West Village", "Manhattan", 40.7358, -74.0036},
}

func weightedHour(r *rand.Rand) int {
	total := 0
	for _, w := range hourWeights {
		total += w
	}
	n := r.Intn(total)
	for h, w := range hourWeights {
		if n < w {
			return h
		}
		n -= w
	}
	return 0
}

func weightedChoice(r *rand.Rand, values []int, weights []int) int {
	total := 0
	for _, w := range weights {
		total += w
	}
	n := r.Intn(total)
	for i, w := range weights {
		if n < w {
			return values[i]
		}
		n -= w
	}
	return values[0]
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func makeTrip(r *rand.Rand, start time.Time, days int) models.Trip {
	pickup := start.
		AddDate(0, 0, r.Intn(days)).
		Add(time.Duration(weightedHour(r))*time.Hour +
			time.Duration(r.Intn(60))*time.Minute +
			time.Duration(r.Intn(60))*time.Second)

	// Trip duration: 2-45 minutes
	durationMinutes := clamp(r.NormFloat64()*8+15, 2, 45)
	duration := time.Duration(durationMinutes * float64(time.Minute))
	dropoff := pickup.Add(duration)

	// Trip distance: 0.5-15 miles
	distance := clamp(r.NormFloat64()*2.5+3.5, 0.5, 15)

	// Simplified NYC fare formula
	fare := 2.50 + distance*2.50 + durationMinutes*0.50
	fare = math.Max(2.50, fare+r.NormFloat64()*2)

	paymentType := weightedChoice(r, []int{models.PaymentCreditCard, models.PaymentCash, models.PaymentNoCharge}, []int{70, 25, 5})

	var tip float64
	if paymentType == models.PaymentCreditCard {
		tip = fare * clamp(r.NormFloat64()*0.05+0.18, 0.10, 0.30)
	}

	passengers := weightedChoice(r, []int{1, 2, 3, 4, 5, 6}, []int{70, 15, 8, 4, 2, 1})

	return models.Trip{
		PickupTime:     pickup.Unix(),
		DropoffTime:    dropoff.Unix(),
		PickupZoneID:   zoneSeeds[r.Intn(len(zoneSeeds))].id,
		DropoffZoneID:  zoneSeeds[r.Intn(len(zoneSeeds))].id,
		PassengerCount: passengers,
		TripDistance:   math.Round(distance*100) / 100,
		FareAmount:     math.Round(fare*100) / 100,
		TipAmount:      math.Round(tip*100) / 100,
		TotalAmount:    math.Round((fare+tip+0.80)*100) / 100,
		PaymentType:    paymentType,
	}
}

func main() {
	var (
		numTrips = flag.Int("trips", 10000, "number of trips to generate")
		days     = flag.Int("days", 31, "number of days to spread trips over")
		dbPath   = flag.String("db", "./data/taxi.db", "sqlite database path")
		seed     = flag.Int64("seed", 42, "random seed")
	)
	flag.Parse()

	db, err := database.Open(database.Config{Driver: database.DriverSQLite, Path: *dbPath})
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}

	ctx := context.Background()
	r := rand.New(rand.NewSource(*seed))

	zoneRepo := repository.NewZoneRepository(db)
	zones := make([]models.Zone, 0, len(zoneSeeds))
	for _, zs := range zoneSeeds {
		lat, lon := zs.lat, zs.lon
		zones = append(zones, models.Zone{
			ZoneID:      zs.id,
			ZoneName:    zs.name,
			Borough:     zs.borough,
			ServiceZone: "Yellow Zone",
			CentroidLat: &lat,
			CentroidLon: &lon,
		})
	}
	if err := zoneRepo.InsertZones(ctx, zones); err != nil {
		log.Fatal("Failed to insert zones: ", err)
	}

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tripRepo := repository.NewTripRepository(db, 0)

	const batch = 1000
	trips := make([]models.Trip, 0, batch)
	inserted := 0
	for i := 0; i < *numTrips; i++ {
		trips = append(trips, makeTrip(r, start, *days))
		if len(trips) == batch {
			if err := tripRepo.InsertTrips(ctx, trips); err != nil {
				log.Fatal("Failed to insert trips: ", err)
			}
			inserted += len(trips)
			trips = trips[:0]
		}
	}
	if len(trips) > 0 {
		if err := tripRepo.InsertTrips(ctx, trips); err != nil {
			log.Fatal("Failed to insert trips: ", err)
		}
		inserted += len(trips)
	}

	fmt.Printf("Seeded %d zones and %d trips into %s\n", len(zones), inserted, *dbPath)
}
