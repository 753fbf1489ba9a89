// ABOUTME: Built-in demo functions the CLI offers the model
// ABOUTME: Current time lookup by IANA zone and temperature unit conversion

package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mauromedda/genai-interactions-go/pkg/interactions/functions"
)

type timeArgs struct {
	Timezone string `json:"timezone,omitempty" jsonschema:"IANA time zone such as Europe/Rome; defaults to UTC"`
}

type timeResult struct {
	Time     string `json:"time"`
	Timezone string `json:"timezone"`
	Weekday  string `json:"weekday"`
}

type convertArgs struct {
	Value float64 `json:"value" jsonschema:"temperature to convert"`
	From  string  `json:"from" jsonschema:"source unit: celsius, fahrenheit or kelvin"`
	To    string  `json:"to" jsonschema:"target unit: celsius, fahrenheit or kelvin"`
}

type convertResult struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// builtinRegistry returns the functions exposed to the model. now is
// injected so tests get a fixed clock.
func builtinRegistry(now func() time.Time) (*functions.Registry, error) {
	return functions.NewRegistry(
		functions.MustTyped("get_current_time", "Returns the current date and time in a time zone.",
			func(_ context.Context, in timeArgs) (timeResult, error) {
				return currentTime(now(), in.Timezone)
			}),
		functions.MustTyped("convert_temperature", "Converts a temperature between celsius, fahrenheit and kelvin.",
			func(_ context.Context, in convertArgs) (convertResult, error) {
				v, err := convertTemperature(in.Value, in.From, in.To)
				if err != nil {
					return convertResult{}, err
				}
				return convertResult{Value: v, Unit: strings.ToLower(in.To)}, nil
			}),
	)
}

func currentTime(t time.Time, zone string) (timeResult, error) {
	if zone == "" {
		zone = "UTC"
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return timeResult{}, fmt.Errorf("unknown time zone %q", zone)
	}
	local := t.In(loc)
	return timeResult{
		Time:     local.Format(time.RFC3339),
		Timezone: loc.String(),
		Weekday:  local.Weekday().String(),
	}, nil
}

func convertTemperature(v float64, from, to string) (float64, error) {
	var kelvin float64
	switch strings.ToLower(from) {
	case "celsius", "c":
		kelvin = v + 273.15
	case "fahrenheit", "f":
		kelvin = (v-32)*5/9 + 273.15
	case "kelvin", "k":
		kelvin = v
	default:
		return 0, fmt.Errorf("unknown unit %q", from)
	}
	if kelvin < 0 {
		return 0, fmt.Errorf("%g %s is below absolute zero", v, from)
	}

	switch strings.ToLower(to) {
	case "celsius", "c":
		return kelvin - 273.15, nil
	case "fahrenheit", "f":
		return (kelvin-273.15)*9/5 + 32, nil
	case "kelvin", "k":
		return kelvin, nil
	default:
		return 0, fmt.Errorf("unknown unit %q", to)
	}
}
