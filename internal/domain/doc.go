// Package domain models NDBC ocean-buoy telemetry and the surf metrics
// derived from it.
//
// # Data Source
//
// Observations originate from the National Data Buoy Center realtime feeds at
// https://www.ndbc.noaa.gov/data/realtime2/<station>.txt. Each feed is a
// whitespace-delimited text report updated roughly every 10 minutes, newest
// row first, with two comment-prefixed header lines: column names, then units.
//
// # Feed Conventions
//
// Header detection:
//
//	#YY  MM DD hh mm WDIR WSPD GST  WVHT   DPD   APD MWD   PRES  ATMP  WTMP ...
//	#yr  mo dy hr mn degT m/s  m/s     m   sec   sec degT   hPa  degC  degC ...
//	The first comment line containing the required column set is the header;
//	later comment lines (the units row) are skipped. Some stations use the
//	lowercase timestamp family (yr/mo/dy/hr/mn) instead of YY/MM/DD/hh/mm.
//
// Missing data sentinels (always normalized to absent, never to zero):
//
//	"MM" or "NaN"  any column
//	999            directions (WDIR, MWD); a fallback wind direction of 0
//	               is also treated as absent (calm-coded land stations)
//	99             wind speed and gust
//	9999           pressure
//
// Timestamps are UTC. Two-digit years are offset into the 2000s.
//
// # Derived Metrics
//
// Surf face height and wave energy are empirical functions of significant
// wave height (WVHT, metres) and dominant period (DPD, seconds):
//
//	surf_height_m = round(0.7 × WVHT × √DPD, 2)
//	wave_energy   = round(WVHT² × DPD, 1)
//
// The wave trend compares the mean of the two newest wave-height samples
// against the mean of the two before them; a ±10% swing classifies the swell
// as rising or falling, anything less as holding.
package domain
