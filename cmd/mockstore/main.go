// Command mockstore serves a fake WPC verification file tree for local
// development, so the dashboard can run without reaching the real origin
// server. It generates availability indexes and GeoJSON artifacts for a set
// of dates and MPD numbers using the same path layout the dashboard resolves.
//
// Usage:
//
//	go run ./cmd/mockstore -addr :3001 -dates 20240915,20240916 -numbers 12,13
//
// then point the dashboard at it:
//
//	DATA_URL=http://localhost:3001 go run ./cmd/dashboard
package main

import (
	"flag"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/couchcryptid/mpd-verif-dashboard/internal/adapter/wpc"
	"github.com/couchcryptid/mpd-verif-dashboard/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	addr := flag.String("addr", ":3001", "listen address")
	dates := flag.String("dates", "20240915", "comma-separated YYYYMMDD dates to serve")
	numbers := flag.String("numbers", "12,13", "comma-separated MPD numbers valid on each date")
	flag.Parse()

	catalog, err := domain.LoadCatalog("")
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	files, err := buildTree(catalog, strings.Split(*dates, ","), strings.Split(*numbers, ","))
	if err != nil {
		return err
	}
	log.Printf("serving %d generated files on %s", len(files), *addr)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		body, ok := files[r.URL.Path]
		if !ok {
			log.Printf("404 %s", r.URL.Path)
			http.NotFound(w, r)
			return
		}
		log.Printf("200 %s", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write(body) //nolint:errcheck // best-effort mock response
	})

	return http.ListenAndServe(*addr, mux)
}

// buildTree generates the availability index and every product artifact for
// each (date, number) pair, keyed by URL path. Paths come from the same
// resolver the dashboard uses, with an empty base URL.
func buildTree(catalog *domain.Catalog, dates, numbers []string) (map[string][]byte, error) {
	files := make(map[string][]byte)

	for _, ds := range dates {
		date, err := domain.ParseDateKey(strings.TrimSpace(ds))
		if err != nil {
			return nil, err
		}

		padded := make([]string, 0, len(numbers))
		for _, ns := range numbers {
			n, err := strconv.Atoi(strings.TrimSpace(ns))
			if err != nil {
				return nil, fmt.Errorf("invalid MPD number %q: %w", ns, err)
			}
			padded = append(padded, domain.PadNumber(n))
		}

		index, err := json.Marshal(map[string][]string{"mpd_nums": padded})
		if err != nil {
			return nil, err
		}
		files[wpc.AvailabilityURL("", date)] = index

		for _, number := range padded {
			for i, id := range catalog.ProductIDs() {
				doc, err := buildArtifact(id, date, number, i)
				if err != nil {
					return nil, fmt.Errorf("build %s artifact: %w", id, err)
				}
				files[wpc.ArtifactURL("", id, date.Year(), number)] = doc
			}
		}
	}
	return files, nil
}

// buildArtifact produces a minimal FeatureCollection with one box polygon,
// offset per product so overlays do not sit exactly on top of each other.
// The MPD document additionally carries verification metadata.
func buildArtifact(productID string, date time.Time, number string, offset int) ([]byte, error) {
	lon := -95.0 + float64(offset)*0.2
	lat := 38.0 + float64(offset)*0.1

	feature := map[string]any{
		"type": "Feature",
		"geometry": map[string]any{
			"type": "Polygon",
			"coordinates": [][][2]float64{{
				{lon, lat}, {lon + 2, lat}, {lon + 2, lat + 1.5}, {lon, lat + 1.5}, {lon, lat},
			}},
		},
		"properties": map[string]any{"product": productID},
	}

	doc := map[string]any{
		"type":     "FeatureCollection",
		"features": []any{feature},
	}

	if productID == domain.ProductMPD {
		n, err := strconv.Atoi(number)
		if err != nil {
			return nil, err
		}
		day := date.Format("2006-01-02")
		doc["metadata"] = map[string]any{
			"MPD_number":            number,
			"TAG":                   "HEAVY RAIN",
			"valid_date":            day + " 18:00:00",
			"valid_start":           day + " 12:00:00",
			"valid_end":             day + " 18:00:00",
			"Max_Rain_Accumulation": 2.5 + float64(n%4)*0.5,
			"Max_Rain_Rate":         1.0 + float64(n%3)*0.25,
			"Max_Unit_Q":            0.8,
			"Mean_Unit_Q":           0.4,
			"FCOV":                  0.35,
			"CSI":                   0.28,
			"INTEREST":              0.72,
			"CENTROID_DIST":         41.3,
			"GSS":                   0.22,
		}
	}

	return json.Marshal(doc)
}
