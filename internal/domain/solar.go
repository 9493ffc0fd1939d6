package domain

import (
	"fmt"
	"math"
	"time"
)

// Solar altitudes (degrees) the calculator is usually asked about.
const (
	AltitudeHorizon      = -0.833 // upper limb at the horizon, refraction included
	AltitudeCivil        = -6.0
	AltitudeNautical     = -12.0
	AltitudeAstronomical = -18.0
)

// displayLayout is the clock format used in SolarInstant.Display.
const displayLayout = "3:04 PM"

// Coordinates is a resolved event location in decimal degrees.
type Coordinates struct {
	Lat float64
	Lon float64
}

// Key returns a stable cache key for the coordinates.
func (c Coordinates) Key() string {
	return fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lon)
}

// SolarZone is a fixed zone at the location's mean solar offset, lon/15
// hours rounded to the hour. Calendar days in this zone follow the local
// sun regardless of the zone events are displayed in.
func (c Coordinates) SolarZone() *time.Location {
	hours := int(math.Round(c.Lon / 15))
	return time.FixedZone(fmt.Sprintf("UTC%+d", hours), hours*3600)
}

// SolarInstant pairs an absolute time with its local display string.
// The zero value means the event does not happen on that date.
type SolarInstant struct {
	Time    time.Time
	Display string
}

func newSolarInstant(t time.Time) SolarInstant {
	return SolarInstant{Time: t, Display: t.Format(displayLayout)}
}

// IsZero reports whether the instant is unset.
func (s SolarInstant) IsZero() bool {
	return s.Time.IsZero()
}

// SolarTimes holds one calendar day of solar events, in the zone of the date
// they were computed for.
type SolarTimes struct {
	Sunrise   SolarInstant
	Sunset    SolarInstant
	SolarNoon SolarInstant

	CivilTwilightBegin        SolarInstant
	CivilTwilightEnd          SolarInstant
	NauticalTwilightBegin     SolarInstant
	NauticalTwilightEnd       SolarInstant
	AstronomicalTwilightBegin SolarInstant
	AstronomicalTwilightEnd   SolarInstant
}

// solarDay carries the per-date terms of the NOAA approximation.
type solarDay struct {
	midnight    time.Time
	correction  float64 // time correction factor, minutes
	declination float64 // radians
}

func newSolarDay(lon float64, date time.Time) solarDay {
	y, m, d := date.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, date.Location())
	_, offset := date.Zone()

	b := degToRad(360.0 / 365.0 * float64(midnight.YearDay()-81))
	eot := 9.87*math.Sin(2*b) - 7.53*math.Cos(b) - 1.5*math.Sin(b)
	lstm := 15 * float64(offset) / 3600

	return solarDay{
		midnight:    midnight,
		correction:  4*(lon-lstm) + eot,
		declination: degToRad(23.45 * math.Sin(b)),
	}
}

// hourAngle returns the hour angle, in hours, at which the sun sits at
// altitude. The arccos argument leaves [-1, 1] when it never gets there.
func (d solarDay) hourAngle(lat, altitude float64) (float64, error) {
	phi := degToRad(lat)
	cosH := (math.Sin(degToRad(altitude)) - math.Sin(d.declination)*math.Sin(phi)) /
		(math.Cos(d.declination) * math.Cos(phi))
	if math.IsNaN(cosH) || cosH < -1 || cosH > 1 {
		return 0, fmt.Errorf("%w: latitude %.3f on %s at altitude %.3f",
			ErrNoSolarEvent, lat, d.midnight.Format(time.DateOnly), altitude)
	}
	return radToDeg(math.Acos(cosH)) / 15, nil
}

// at converts local solar hours into an absolute time on this day.
func (d solarDay) at(solarHours float64) time.Time {
	clockHours := solarHours - d.correction/60
	return d.midnight.Add(time.Duration(clockHours * float64(time.Hour)))
}

// SolarEvent returns the sunset of date followed by the sunrise of the next
// day for the given altitude, the dusk-to-dawn window astronomy callers use.
// The UTC offset is taken from date's location.
func SolarEvent(lat, lon float64, date time.Time, altitude float64) (sunset, sunrise time.Time, err error) {
	today := newSolarDay(lon, date)
	h, err := today.hourAngle(lat, altitude)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	tomorrow := newSolarDay(lon, date.AddDate(0, 0, 1))
	hNext, err := tomorrow.hourAngle(lat, altitude)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	return today.at(12 + h), tomorrow.at(12 - hNext), nil
}

// ComputeSolarTimes returns the solar events for the calendar day of date.
// A missing sunrise or sunset is an error; a twilight band the sun never
// reaches is left zero.
func ComputeSolarTimes(c Coordinates, date time.Time) (SolarTimes, error) {
	day := newSolarDay(c.Lon, date)

	h, err := day.hourAngle(c.Lat, AltitudeHorizon)
	if err != nil {
		return SolarTimes{}, err
	}

	st := SolarTimes{
		Sunrise:   newSolarInstant(day.at(12 - h)),
		Sunset:    newSolarInstant(day.at(12 + h)),
		SolarNoon: newSolarInstant(day.at(12)),
	}
	st.CivilTwilightBegin, st.CivilTwilightEnd = day.band(c.Lat, AltitudeCivil)
	st.NauticalTwilightBegin, st.NauticalTwilightEnd = day.band(c.Lat, AltitudeNautical)
	st.AstronomicalTwilightBegin, st.AstronomicalTwilightEnd = day.band(c.Lat, AltitudeAstronomical)
	return st, nil
}

func (d solarDay) band(lat, altitude float64) (begin, end SolarInstant) {
	h, err := d.hourAngle(lat, altitude)
	if err != nil {
		return SolarInstant{}, SolarInstant{}
	}
	return newSolarInstant(d.at(12 - h)), newSolarInstant(d.at(12 + h))
}

func degToRad(d float64) float64 { return d * math.Pi / 180 }

func radToDeg(r float64) float64 { return r * 180 / math.Pi }
