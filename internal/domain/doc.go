// Package domain holds the weather-to-recommendation pipeline for calendar
// events. Everything here is pure: no I/O, no globals beyond the swappable
// clock, and every function is safe to call concurrently.
//
// # Flow
//
// For one event the pipeline runs, leaves first:
//
//	SolarEvent / ComputeSolarTimes  ->  ClassifySpan (time of day per hour)
//	ParseCondition (flags per hour) ->  RelativeTemperature
//	BuildObservations               ->  SelectGearForSpan, Score
//	Render*                         ->  MergeTitle / MergeDescription
//
// Annotate ties these together into the (title, description) pair written
// back to the event.
//
// # Units
//
// All temperatures are Fahrenheit and wind speeds miles per hour. Adapters
// convert provider units before building a [Forecast].
//
// # Solar model
//
// Solar times use the NOAA approximation (equation of time and declination
// from the day-of-year angle B = 360/365·(doy−81)). It is accurate to a few
// minutes away from the poles. When the sun never crosses the requested
// altitude the calculator returns [ErrNoSolarEvent] instead of a NaN time,
// and the classifier degrades to [TimeUnknown].
//
// # Text protocol
//
// Machine text is appended after a delimiter. Everything before the first
// delimiter is user content and is never touched, so re-running the
// pipeline replaces the previous suffix instead of stacking a new one.
package domain
