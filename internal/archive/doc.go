// Package archive parses Open-Meteo historical archive documents into a
// typed, date-sorted daily series.
//
// # Document format
//
// The archive API (https://archive-api.open-meteo.com/v1/archive) returns a
// JSON object whose "daily" key holds seven positionally aligned arrays of
// equal length:
//
//	time                     ["2016-02-15", ...]          calendar dates
//	temperature_2m_min       [23.4, ...]                  daily low
//	temperature_2m_max       [31.9, ...]                  daily high
//	apparent_temperature_min [14.1, ...]                  feels-like low
//	apparent_temperature_max [24.6, ...]                  feels-like high
//	sunrise                  ["2016-02-15T06:47", ...]    local datetime
//	sunset                   ["2016-02-15T17:34", ...]    local datetime
//
// Sunrise and sunset carry no UTC offset; they are interpreted in the time
// zone the archive was requested with (the "timezone" query parameter).
//
// All schema validation happens once, at load time: missing "daily", a
// length mismatch between arrays, or an unparseable date fails the whole
// load with ErrMalformedArchive. Downstream code never re-checks presence.
//
// Missing calendar dates are permitted and are never synthesized; the
// series is simply the sorted set of dates the archive contains.
package archive
