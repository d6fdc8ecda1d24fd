// Command genfeed writes synthetic NDBC realtime2 feed files for local
// development and test fixtures. The generated waves follow a smooth swell
// cycle so derived metrics and trends are exercised; output is deterministic
// for a given base time.
//
// Usage:
//
//	go run ./cmd/genfeed -out testdata/feeds -stations 46266,46225,LJAC1 -hours 48
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const header = `#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP  DEWP  VIS PTDY  TIDE
#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC  degC  nmi  hPa    ft
`

func main() {
	out := flag.String("out", "testdata/feeds", "output directory for feed files")
	stations := flag.String("stations", "46266,46225,46259", "comma-separated station ids")
	hours := flag.Int("hours", 48, "hours of history to generate")
	base := flag.String("base", "2024-07-15T18:40:00Z", "newest report time (RFC 3339)")
	flag.Parse()

	baseTime, err := time.Parse(time.RFC3339, *base)
	if err != nil {
		log.Fatalf("invalid -base: %v", err)
	}

	if err := os.MkdirAll(*out, 0o755); err != nil {
		log.Fatal(err)
	}

	for i, id := range strings.Split(*stations, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		path := filepath.Join(*out, strings.ToUpper(id)+".txt")
		if err := os.WriteFile(path, []byte(generate(i, baseTime, *hours)), 0o600); err != nil {
			log.Fatal(err)
		}
		log.Printf("wrote %s", path)
	}
}

// generate renders rows newest-first at the 30-minute report cadence.
// The station index offsets the swell phase so stations differ.
func generate(station int, base time.Time, hours int) string {
	var b strings.Builder
	b.WriteString(header)

	phase := float64(station) * 0.7
	for i := 0; i <= hours*2; i++ {
		ts := base.Add(-time.Duration(i) * 30 * time.Minute)
		age := float64(i) / 2

		// A 24-hour swell cycle on top of a 1.5 m baseline.
		height := 1.5 + 0.6*math.Sin(2*math.Pi*age/24+phase)
		period := 11 + 3*math.Cos(2*math.Pi*age/24+phase)
		windDir := math.Mod(270+30*math.Sin(age/6+phase)+360, 360)
		windSpeed := 4 + 2*math.Sin(age/4+phase)

		// Every seventh row drops wave data, mimicking sensor gaps.
		wvht, dpd := fmt.Sprintf("%5.2f", height), fmt.Sprintf("%5.1f", period)
		if i%7 == 6 {
			wvht, dpd = "   MM", "   MM"
		}

		fmt.Fprintf(&b, "%04d %02d %02d %02d %02d %3.0f %4.1f %4.1f %s %s %5.1f %3.0f 1013.2  18.5  17.9    MM   MM   MM    MM\n",
			ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute(),
			windDir, windSpeed, windSpeed+1.8,
			wvht, dpd, period-2, math.Mod(280+10*math.Sin(age/8), 360))
	}

	return b.String()
}
