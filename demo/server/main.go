package main

import (
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"

	mssqlspatial "github.com/GJ-Chokanan/mssql-spatial"
)

type City struct {
	Name      string
	Country   string
	Longitude float64
	Latitude  float64
}

var cities = []City{
	{"Tokyo", "Japan", 139.6917, 35.6895},
	{"New York", "United States", -73.9857, 40.7484},
	{"London", "United Kingdom", -0.1276, 51.5074},
	{"Paris", "France", 2.3522, 48.8566},
	{"Beijing", "China", 116.4074, 39.9042},
	{"São Paulo", "Brazil", -46.6333, -23.5505},
	{"Mumbai", "India", 72.8777, 19.0760},
	{"Sydney", "Australia", 151.2093, -33.8688},
	{"Berlin", "Germany", 13.4050, 52.5200},
}

type cityRecord struct {
	Name    string `json:"name"`
	Country string `json:"country"`
	WKT     string `json:"wkt"`
	HexWKB  string `json:"hexWkb"`
}

func main() {
	// Pre-encode the fixtures the way SQL Server would store them.
	records := make([]cityRecord, 0, len(cities))
	for _, city := range cities {
		g, err := mssqlspatial.NewPoint(city.Longitude, city.Latitude, 4326)
		if err != nil {
			log.Fatalf("Failed to encode %s: %v", city.Name, err)
		}
		records = append(records, cityRecord{
			Name:    city.Name,
			Country: city.Country,
			WKT:     g.AsTextZM(),
			HexWKB:  hex.EncodeToString(g.Serialize()),
		})
	}

	http.HandleFunc("/cities", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})

	// POST a WKT body, get the SQL Server hex encoding back.
	http.HandleFunc("/encode", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g, err := mssqlspatial.Parse(string(body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, hex.EncodeToString(g.Serialize()))
	})

	// POST a hex-encoded stored value, get its WKT back.
	http.HandleFunc("/decode", func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data, err := hex.DecodeString(string(body))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		g, err := mssqlspatial.Deserialize(data)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		io.WriteString(w, g.AsTextZM())
	})

	log.Println("Server starting on http://localhost:8080")
	log.Fatal(http.ListenAndServe(":8080", nil))
}
