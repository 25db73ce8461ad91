package intake

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/upec/tracklane/internal/contract"
	"github.com/upec/tracklane/schema"
)

// idNamespace seeds the name-based ids given to slots that arrive without one.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("tracklane:interval"))

// DeriveID returns a stable id for the slot at position within taskKey.
func DeriveID(taskKey string, position int) string {
	return uuid.NewSHA1(idNamespace, []byte(taskKey+"/"+itoa(position))).String()
}

// resolve converts decoded documents into raw tasks.
func resolve(docs []taskDoc, opts Options) Result {
	loc := opts.Location
	if loc == nil {
		loc = time.Local
	}
	var res Result
	for ti, doc := range docs {
		key := doc.key()
		if key == "" {
			key = "task-" + itoa(ti+1)
		}
		task := schema.RawTaskIntervals{TaskKey: key, Intervals: []schema.Interval{}}
		for si, slot := range doc.slots() {
			iv, warnings := resolveSlot(key, si, slot, doc, opts.PlanFallback, loc)
			task.Intervals = append(task.Intervals, iv)
			res.Warnings = append(res.Warnings, warnings...)
		}
		res.Tasks = append(res.Tasks, task)
	}
	return res
}

// resolveSlot builds one interval. Unparseable times become absent and are
// reported as warnings.
func resolveSlot(taskKey string, position int, slot slotDoc, task taskDoc, planFallback bool, loc *time.Location) (schema.Interval, []Warning) {
	iv := schema.Interval{ID: strings.TrimSpace(string(slot.ID))}
	if iv.ID == "" {
		iv.ID = DeriveID(taskKey, position)
	}

	var warnings []Warning
	parse := func(field, value string) *time.Time {
		if strings.TrimSpace(value) == "" {
			return nil
		}
		t, err := contract.ParseTimestamp(value, loc)
		if err != nil {
			err = fmt.Errorf("ignored: %w", err)
			warnings = append(warnings, Warning{TaskKey: taskKey, IntervalID: iv.ID, Field: field, Value: value, Err: err})
			return nil
		}
		return &t
	}
	iv.StartTime = parse("startTime", slot.StartTime)
	iv.EndTime = parse("endTime", slot.EndTime)

	proc := slot.Procedure
	if proc == nil {
		proc = &procedureDoc{}
	}
	iv.GroupKey = firstNonEmpty(string(slot.GroupKey), string(proc.ProcedureNo), proc.ProcedureName)
	iv.Label = firstNonEmpty(slot.Label, proc.ProcedureName)
	iv.Status = schema.ParseSlotStatus(firstNonEmpty(slot.Status, proc.Status))

	if planFallback && iv.StartTime == nil && iv.EndTime == nil {
		candidates := [][2]string{
			{proc.PlanStartDate, proc.PlanEndDate},
			{task.PlanStartDate, task.PlanEndDate},
		}
		for _, plan := range candidates {
			start := parse("planStartDate", plan[0])
			end := parse("planEndDate", plan[1])
			if start != nil || end != nil {
				iv.StartTime, iv.EndTime, iv.Planned = start, end, true
				break
			}
		}
	}
	if w, ok := spanWarning(taskKey, iv, slot, proc, task); ok {
		warnings = append(warnings, w)
	}
	return iv, warnings
}

// spanWarning reports an interval whose dates lie too far apart to be expanded
// day by day. Its times are kept and it is bucketed under its endpoint dates.
func spanWarning(taskKey string, iv schema.Interval, slot slotDoc, proc *procedureDoc, task taskDoc) (Warning, bool) {
	if iv.StartTime == nil || iv.EndTime == nil || iv.StartTime.After(*iv.EndTime) {
		return Warning{}, false
	}
	days, _ := schema.DaysBetween(schema.DateOf(*iv.StartTime), schema.DateOf(*iv.EndTime))
	if days <= schema.MaxSpanDays {
		return Warning{}, false
	}
	field, value := "endTime", slot.EndTime
	if iv.Planned {
		field, value = "planEndDate", firstNonEmpty(proc.PlanEndDate, task.PlanEndDate)
	}
	return Warning{
		TaskKey:    taskKey,
		IntervalID: iv.ID,
		Field:      field,
		Value:      value,
		Err:        fmt.Errorf("spans %d days, more than %d; only the endpoint dates are bucketed", days, schema.MaxSpanDays),
	}, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
