package extract

import (
	"fmt"
	"strings"
	"time"

	"github.com/kaptinlin/jsonrepair"
	"github.com/teambition/rrule-go"
	"github.com/tidwall/gjson"

	"github.com/calvinschedulo/schedulo/internal/event"
)

// dateTimeFormats are tried in order when the model's timestamps are not
// strict RFC 3339.
var dateTimeFormats = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseDrafts turns raw model output into validated event drafts. Malformed
// individual items are dropped and reported in the returned warning list;
// the call fails only when the payload as a whole is unparseable.
func ParseDrafts(raw string, now time.Time, loc *time.Location) ([]event.Record, []string, error) {
	payload := strings.TrimSpace(raw)

	if !gjson.Valid(payload) {
		repaired, err := jsonrepair.JSONRepair(payload)
		if err != nil {
			return nil, nil, &ExtractionError{Err: fmt.Errorf("unparseable model output: %w", err)}
		}
		payload = repaired
		if !gjson.Valid(payload) {
			return nil, nil, &ExtractionError{Err: fmt.Errorf("model output still invalid after repair")}
		}
	}

	root := gjson.Parse(payload)

	var items []gjson.Result
	switch {
	case root.IsArray():
		items = root.Array()
	case root.IsObject():
		// Some replies wrap the array in an object, or contain one event.
		if events := root.Get("events"); events.IsArray() {
			items = events.Array()
		} else {
			items = []gjson.Result{root}
		}
	default:
		return nil, nil, &ExtractionError{Err: fmt.Errorf("model output is neither an array nor an object")}
	}

	var drafts []event.Record
	var warnings []string

	for i, item := range items {
		if !item.IsObject() {
			warnings = append(warnings, fmt.Sprintf("draft %d: not an object, dropped", i))
			continue
		}

		draft, itemWarnings := parseDraft(item, loc)
		warnings = append(warnings, prefixWarnings(i, itemWarnings)...)

		draft.ApplyDefaults(now, loc)
		if err := draft.Validate(); err != nil {
			warnings = append(warnings, fmt.Sprintf("draft %d dropped: %v", i, err))
			continue
		}

		drafts = append(drafts, draft)
	}

	return drafts, warnings, nil
}

func prefixWarnings(index int, warnings []string) []string {
	out := make([]string, 0, len(warnings))
	for _, w := range warnings {
		out = append(out, fmt.Sprintf("draft %d: %s", index, w))
	}
	return out
}

// parseDraft reads one event object field by field, tolerating the shape
// drift the extraction channel is known for: string-or-number priorities,
// the historical "priortiy" key, classID/className/course aliases, and
// recurrence as either a string or a list.
func parseDraft(item gjson.Result, loc *time.Location) (event.Record, []string) {
	var warnings []string
	var r event.Record

	if summary := item.Get("summary"); summary.Exists() {
		r.Summary = strings.TrimSpace(summary.String())
	} else {
		r.Summary = event.DefaultSummary
	}

	r.Location = item.Get("location").String()
	r.Description = item.Get("description").String()

	var warn []string
	r.Start, warn = parseDateTime(item.Get("start"), loc)
	warnings = append(warnings, warn...)
	r.End, warn = parseDateTime(item.Get("end"), loc)
	warnings = append(warnings, warn...)

	for _, a := range item.Get("attendees").Array() {
		email := a.Get("email").String()
		if email == "" {
			// Tolerate a bare list of address strings.
			email = a.String()
		}
		email = strings.TrimSpace(email)
		if email != "" {
			r.Attendees = append(r.Attendees, email)
		}
	}

	r.Reminders = parseReminders(item.Get("reminders"))
	r.ColorID = int(item.Get("colorId").Int())

	if rec, warn := parseRecurrence(item.Get("recurrence")); warn != "" {
		warnings = append(warnings, warn)
	} else {
		r.Recurrence = rec
	}

	private := item.Get("extendedProperties.private")
	r.Provenance = parseProvenance(private)

	return r, warnings
}

func parseDateTime(value gjson.Result, loc *time.Location) (event.DateTime, []string) {
	if !value.Exists() {
		return event.DateTime{}, nil
	}

	raw := value.Get("dateTime").String()
	zone := value.Get("timeZone").String()
	if raw == "" && value.Type == gjson.String {
		raw = value.String()
	}
	if raw == "" {
		return event.DateTime{}, nil
	}

	parseLoc := loc
	if zone != "" {
		if parsed, err := time.LoadLocation(zone); err == nil {
			parseLoc = parsed
		} else {
			return event.DateTime{}, []string{fmt.Sprintf("unknown time zone %q, using default", zone)}
		}
	}

	for _, format := range dateTimeFormats {
		var ts time.Time
		var err error
		if format == time.RFC3339 {
			ts, err = time.Parse(format, raw)
		} else {
			ts, err = time.ParseInLocation(format, raw, parseLoc)
		}
		if err == nil {
			return event.DateTime{Time: ts, TimeZone: parseLoc.String()}, nil
		}
	}

	return event.DateTime{}, []string{fmt.Sprintf("unparseable timestamp %q", raw)}
}

func parseReminders(value gjson.Result) event.ReminderPolicy {
	if !value.Exists() {
		return event.ReminderPolicy{UseDefault: true}
	}

	policy := event.ReminderPolicy{UseDefault: value.Get("useDefault").Bool()}
	if policy.UseDefault {
		return policy
	}

	for _, o := range value.Get("overrides").Array() {
		method := event.ReminderMethod(o.Get("method").String())
		if method != event.ReminderPopup && method != event.ReminderEmail {
			continue
		}
		policy.Overrides = append(policy.Overrides, event.ReminderOverride{
			Method:        method,
			MinutesBefore: o.Get("minutes").Int(),
		})
	}

	if len(policy.Overrides) == 0 {
		policy.UseDefault = true
	}
	return policy
}

// parseRecurrence accepts a single rule string or a one-element list and
// validates it. An invalid rule drops the recurrence, not the draft.
func parseRecurrence(value gjson.Result) (string, string) {
	var raw string
	switch {
	case !value.Exists():
		return "", ""
	case value.IsArray():
		arr := value.Array()
		if len(arr) == 0 {
			return "", ""
		}
		raw = arr[0].String()
	default:
		raw = value.String()
	}

	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ""
	}

	rule := strings.TrimPrefix(raw, "RRULE:")
	if _, err := rrule.StrToRRule(rule); err != nil {
		return "", fmt.Sprintf("invalid recurrence rule %q dropped: %v", raw, err)
	}

	return "RRULE:" + rule, ""
}

func parseProvenance(private gjson.Result) event.Provenance {
	p := event.Provenance{
		// Everything coming out of the extractor is ours to manage.
		AIGenerated: true,
	}
	if !private.Exists() {
		return p
	}

	p.CourseID = firstNonPlaceholder(
		private.Get("classID").String(),
		private.Get("className").String(),
		private.Get("course").String(),
	)
	p.AssignmentName = firstNonPlaceholder(private.Get("assignmentName").String())

	priority := private.Get("priority")
	if !priority.Exists() {
		// Long-standing misspelling in the extraction schema.
		priority = private.Get("priortiy")
	}
	p.Priority = event.ClampPriority(int(priority.Int()))

	return p
}

// firstNonPlaceholder returns the first value that is neither empty nor the
// "N/A" placeholder the extraction prompt uses for non-assignment events.
func firstNonPlaceholder(values ...string) string {
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" && !strings.EqualFold(v, "n/a") {
			return v
		}
	}
	return ""
}
