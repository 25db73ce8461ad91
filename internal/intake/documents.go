package intake

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// flexString accepts a string or a number, since ids and procedure numbers
// arrive as either.
type flexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *flexString) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", data)
	}
	*f = flexString(n.String())
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *flexString) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a scalar", node.Line)
	}
	if node.Tag == "!!null" {
		*f = ""
		return nil
	}
	*f = flexString(node.Value)
	return nil
}

// procedureDoc is the procedure a timeslot belongs to.
type procedureDoc struct {
	ProcedureNo   flexString `json:"procedureNo" yaml:"procedureNo"`
	ProcedureName string     `json:"procedureName" yaml:"procedureName"`
	Status        string     `json:"status" yaml:"status"`
	PlanStartDate string     `json:"planStartDate" yaml:"planStartDate"`
	PlanEndDate   string     `json:"planEndDate" yaml:"planEndDate"`
}

// slotDoc is one timeslot as written in a document.
type slotDoc struct {
	ID        flexString    `json:"id" yaml:"id"`
	StartTime string        `json:"startTime" yaml:"startTime"`
	EndTime   string        `json:"endTime" yaml:"endTime"`
	GroupKey  flexString    `json:"groupKey" yaml:"groupKey"`
	Status    string        `json:"status" yaml:"status"`
	Label     string        `json:"label" yaml:"label"`
	Procedure *procedureDoc `json:"procedure" yaml:"procedure"`
}

// taskDoc is one task as written in a document. Timeslots may be listed
// under either key.
type taskDoc struct {
	TaskKey       flexString `json:"taskKey" yaml:"taskKey"`
	TaskNo        flexString `json:"taskNo" yaml:"taskNo"`
	PlanStartDate string     `json:"planStartDate" yaml:"planStartDate"`
	PlanEndDate   string     `json:"planEndDate" yaml:"planEndDate"`
	Timeslots     []slotDoc  `json:"timeslots" yaml:"timeslots"`
	Intervals     []slotDoc  `json:"intervals" yaml:"intervals"`
}

// slots returns every timeslot of the task.
func (t taskDoc) slots() []slotDoc {
	return append(append([]slotDoc(nil), t.Timeslots...), t.Intervals...)
}

// key returns the task key, preferring taskKey over taskNo.
func (t taskDoc) key() string {
	if k := strings.TrimSpace(string(t.TaskKey)); k != "" {
		return k
	}
	return strings.TrimSpace(string(t.TaskNo))
}

// envelope is the object form of a document, such as a paginated response.
type envelope struct {
	Content []taskDoc `json:"content" yaml:"content"`
	Tasks   []taskDoc `json:"tasks" yaml:"tasks"`
}

func (e envelope) docs() []taskDoc {
	return append(append([]taskDoc(nil), e.Content...), e.Tasks...)
}

// decodeJSON accepts a task list or an envelope object.
func decodeJSON(data []byte) ([]taskDoc, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var docs []taskDoc
		if err := json.Unmarshal(trimmed, &docs); err != nil {
			return nil, fmt.Errorf("failed to decode JSON task list: %w", err)
		}
		return docs, nil
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode JSON document: %w", err)
	}
	return env.docs(), nil
}

// decodeYAML accepts a task list or an envelope mapping.
func decodeYAML(data []byte) ([]taskDoc, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to decode YAML document: %w", err)
	}
	if root.Kind == 0 || len(root.Content) == 0 {
		return nil, nil
	}
	node := root.Content[0]
	switch node.Kind {
	case yaml.SequenceNode:
		var docs []taskDoc
		if err := node.Decode(&docs); err != nil {
			return nil, fmt.Errorf("failed to decode YAML task list: %w", err)
		}
		return docs, nil
	case yaml.MappingNode:
		var env envelope
		if err := node.Decode(&env); err != nil {
			return nil, fmt.Errorf("failed to decode YAML document: %w", err)
		}
		return env.docs(), nil
	default:
		return nil, fmt.Errorf("line %d: expected a task list or a mapping", node.Line)
	}
}

// csvColumns maps accepted header names onto slot fields.
var csvColumns = map[string]string{
	"task_no":    "task",
	"task_key":   "task",
	"task":       "task",
	"id":         "id",
	"start_time": "start",
	"end_time":   "end",
	"group_key":  "group",
	"status":     "status",
	"label":      "label",
}

// decodeCSV reads one timeslot per row. Rows with the same task key join
// the same task in first-appearance order.
func decodeCSV(data []byte) ([]taskDoc, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	columns := make(map[string]int)
	for i, name := range header {
		if field, ok := csvColumns[strings.ToLower(strings.TrimSpace(name))]; ok {
			columns[field] = i
		}
	}
	if _, ok := columns["task"]; !ok {
		return nil, fmt.Errorf("CSV header must include task_no or task_key")
	}

	cell := func(record []string, field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var docs []taskDoc
	index := make(map[string]int)
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV line %d: %w", line, err)
		}
		key := cell(record, "task")
		pos, ok := index[key]
		if !ok {
			pos = len(docs)
			index[key] = pos
			docs = append(docs, taskDoc{TaskKey: flexString(key)})
		}
		docs[pos].Intervals = append(docs[pos].Intervals, slotDoc{
			ID:        flexString(cell(record, "id")),
			StartTime: cell(record, "start"),
			EndTime:   cell(record, "end"),
			GroupKey:  flexString(cell(record, "group")),
			Status:    cell(record, "status"),
			Label:     cell(record, "label"),
		})
	}
	return docs, nil
}

// itoa is shorthand for positional fallbacks.
func itoa(i int) string { return strconv.Itoa(i) }
