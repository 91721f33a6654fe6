// Copyright 2026 Dagpilot Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package schedule validates cron schedule literals the way Airflow reads
// them: standard 5-field expressions plus @descriptors (@daily, @hourly...).
package schedule

import (
	"regexp"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

var parser = cron.NewParser(
	cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// scheduleIntervalRe pulls the schedule_interval literal out of a generated
// Airflow DAG file, e.g. schedule_interval='30 6 * * *'.
var scheduleIntervalRe = regexp.MustCompile(`schedule_interval\s*=\s*['"]([^'"]*)['"]`)

// Validate parses expr and reports whether Airflow would accept it as a
// cron schedule_interval.
func Validate(expr string) error {
	if expr == "" {
		return errors.New("empty schedule expression")
	}
	if expr == "None" || expr == "@once" {
		// Airflow presets with no cron equivalent.
		return nil
	}
	_, err := parser.Parse(expr)
	return errors.Wrapf(err, "parse schedule %q", expr)
}

// Preview returns the next n activation times of expr after from. Presets
// with no cron equivalent yield nil.
func Preview(expr string, from time.Time, n int) ([]time.Time, error) {
	if expr == "None" || expr == "@once" {
		return nil, nil
	}
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.Wrapf(err, "parse schedule %q", expr)
	}
	times := make([]time.Time, 0, n)
	next := from
	for i := 0; i < n; i++ {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		times = append(times, next)
	}
	return times, nil
}

// ExtractInterval finds the schedule_interval literal in DAG file contents.
// Returns "" when the file carries none.
func ExtractInterval(dagSource []byte) string {
	m := scheduleIntervalRe.FindSubmatch(dagSource)
	if m == nil {
		return ""
	}
	return string(m[1])
}
