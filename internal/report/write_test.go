package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gopkg.in/yaml.v3"

	"github.com/skobkin/topgroup/internal/api"
	"github.com/skobkin/topgroup/internal/procgroup"
)

var fixedTime = time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC)

func exampleReport(t *testing.T, opts Options) Report {
	t.Helper()
	snap, stats := exampleSnapshot(t)
	return Build(snap, stats, opts, fixedTime)
}

func TestFormatKilobytes(t *testing.T) {
	testCases := []struct {
		kb   uint64
		want string
	}{
		{0, "0 B"},
		{2, "2.0 kB"},
		{6500, "6.5 MB"},
		{8500, "8.5 MB"},
		{10000, "10 MB"},
		{3500000, "3.5 GB"},
	}
	for _, tc := range testCases {
		if got := FormatKilobytes(tc.kb); got != tc.want {
			t.Fatalf("FormatKilobytes(%d) = %q, want %q", tc.kb, got, tc.want)
		}
	}
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatText, exampleReport(t, Options{}), TextOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines, got %d:\n%s", len(lines), buf.String())
	}

	wantFields := [][]string{
		{"NAME", "PROCS", "PRIVATE", "RESIDENT", "SHARED"},
		{"nginx", "2", "6.5", "MB", "8.0", "MB", "1.5", "MB"},
		{"sshd", "1", "2.0", "MB", "2.0", "MB", "0", "B"},
		{"TOTAL", "3", "8.5", "MB", "10", "MB", "1.5", "MB"},
	}
	for i, want := range wantFields {
		if got := strings.Fields(lines[i]); !reflect.DeepEqual(got, want) {
			t.Fatalf("line %d = %q, want fields %v", i, lines[i], want)
		}
	}

	header := lines[0]
	if strings.Index(lines[1], "2") != strings.Index(header, "PROCS") {
		t.Fatalf("columns not aligned:\n%s", buf.String())
	}
}

func TestWriteTextWithPIDsAndTop(t *testing.T) {
	var buf bytes.Buffer
	rep := exampleReport(t, Options{ShowPIDs: true, Top: 1})
	if err := WriteText(&buf, rep, TextOptions{}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "sshd") {
		t.Fatalf("top=1 should hide sshd:\n%s", out)
	}
	for _, want := range []string{"  pid 100", "  pid 101", "4.0 MB", "2.5 MB", "showing 1 of 2 groups"} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
	if strings.Index(out, "pid 100") > strings.Index(out, "pid 101") {
		t.Fatalf("expected pids in ascending order:\n%s", out)
	}
}

func TestWriteTextTruncatesAndSanitisesNames(t *testing.T) {
	snap, stats := procgroup.Aggregate(slices.Values([]procgroup.Record{
		record(1, "a-very-long-executable-name", 10, 0),
		record(2, "tab\there", 5, 0),
		record(3, "bad\xffname", 1, 0),
	}))
	rep := Build(snap, stats, Options{}, fixedTime)

	var buf bytes.Buffer
	if err := WriteText(&buf, rep, TextOptions{MaxNameWidth: 8}); err != nil {
		t.Fatalf("WriteText: %v", err)
	}
	lines := strings.Split(buf.String(), "\n")

	if got := strings.Fields(lines[1])[0]; got != "a-very-…" {
		t.Fatalf("unexpected truncated name %q", got)
	}
	if got := strings.Fields(lines[2])[0]; got != "tab?here" {
		t.Fatalf("unexpected sanitised name %q", got)
	}
	if got := strings.Fields(lines[3])[0]; got != "bad�name" {
		t.Fatalf("unexpected lossy name %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatJSON, exampleReport(t, Options{ShowPIDs: true}), TextOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var msg api.SnapshotMessage
	if err := json.Unmarshal(buf.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}

	if msg.Type != "snapshot" {
		t.Fatalf("unexpected type %q", msg.Type)
	}
	if !msg.Timestamp.Equal(fixedTime) {
		t.Fatalf("unexpected timestamp %s", msg.Timestamp)
	}
	if len(msg.Groups) != 2 || msg.Groups[0].Name != "nginx" || msg.Groups[1].Name != "sshd" {
		t.Fatalf("unexpected groups %+v", msg.Groups)
	}
	nginx := msg.Groups[0]
	if nginx.Usage.Memory != 6500 || nginx.Usage.MemoryBytes != 6500000 {
		t.Fatalf("unexpected nginx usage %+v", nginx.Usage)
	}
	if len(nginx.PIDs) != 2 || nginx.PIDs[0].PID != 100 || nginx.PIDs[0].Usage.Shared != 1000 {
		t.Fatalf("unexpected nginx pids %+v", nginx.PIDs)
	}
	if msg.Totals.Resident != 10000 || msg.Processes != 3 || msg.Total != 2 || msg.Shown != 2 {
		t.Fatalf("unexpected totals %+v", msg)
	}
	if msg.Stats.Incomplete != 1 {
		t.Fatalf("unexpected stats %+v", msg.Stats)
	}

	if !strings.Contains(buf.String(), `"memory_kb": 6500`) {
		t.Fatalf("expected flattened kB fields:\n%s", buf.String())
	}
}

func TestWriteJSONEmptySnapshot(t *testing.T) {
	snap, stats := procgroup.Aggregate(slices.Values([]procgroup.Record(nil)))
	var buf bytes.Buffer
	if err := WriteJSON(&buf, Build(snap, stats, Options{}, fixedTime)); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if !strings.Contains(buf.String(), `"groups": []`) {
		t.Fatalf("expected empty group list:\n%s", buf.String())
	}
}

func TestWriteYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatYAML, exampleReport(t, Options{}), TextOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	var msg api.SnapshotMessage
	if err := yaml.Unmarshal(buf.Bytes(), &msg); err != nil {
		t.Fatalf("decode: %v\n%s", err, buf.String())
	}
	if len(msg.Groups) != 2 || msg.Groups[0].Name != "nginx" {
		t.Fatalf("unexpected groups %+v", msg.Groups)
	}
	if msg.Groups[1].Usage.Resident != 2000 || msg.Groups[1].Usage.ResidentBytes != 2000000 {
		t.Fatalf("unexpected sshd usage %+v", msg.Groups[1].Usage)
	}
	if !strings.Contains(buf.String(), "memory_kb: 6500") {
		t.Fatalf("expected inline kB fields:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "pids:") {
		t.Fatalf("pids should be omitted without ShowPIDs:\n%s", buf.String())
	}
}

func TestCollectorMetrics(t *testing.T) {
	rep := exampleReport(t, Options{})

	expected := `
# HELP topgroup_group_memory_bytes Private resident memory (resident minus shared) of the group in bytes.
# TYPE topgroup_group_memory_bytes gauge
topgroup_group_memory_bytes{name="nginx"} 6.5e+06
topgroup_group_memory_bytes{name="sshd"} 2e+06
# HELP topgroup_group_processes Number of processes in the group.
# TYPE topgroup_group_processes gauge
topgroup_group_processes{name="nginx"} 2
topgroup_group_processes{name="sshd"} 1
# HELP topgroup_snapshot_records Process records read for the snapshot by outcome.
# TYPE topgroup_snapshot_records gauge
topgroup_snapshot_records{result="aggregated"} 3
topgroup_snapshot_records{result="incomplete"} 1
topgroup_snapshot_records{result="inconsistent"} 0
topgroup_snapshot_records{result="replaced"} 0
`
	err := testutil.CollectAndCompare(NewCollector(rep), strings.NewReader(expected),
		"topgroup_group_memory_bytes", "topgroup_group_processes", "topgroup_snapshot_records")
	if err != nil {
		t.Fatalf("unexpected metrics: %v", err)
	}

	if count := testutil.CollectAndCount(NewCollector(rep)); count != 2*4+4+1 {
		t.Fatalf("unexpected metric count %d", count)
	}
}

func TestWritePrometheus(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(&buf, FormatPrometheus, exampleReport(t, Options{}), TextOptions{}); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# TYPE topgroup_group_resident_bytes gauge",
		`topgroup_group_resident_bytes{name="nginx"} 8e+06`,
		`topgroup_group_shared_bytes{name="sshd"} 0`,
		"topgroup_snapshot_timestamp_seconds 1.7923158e+09",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestLabelValueEscapesInvalidUTF8(t *testing.T) {
	if got := labelValue("nginx"); got != "nginx" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := labelValue("app\xff"); got != `app\xff` {
		t.Fatalf("unexpected escaped label %q", got)
	}
	if got := labelValue(`app\xff`); got != `app\\xff` {
		t.Fatalf("unexpected escaped backslash label %q", got)
	}
}

func TestWritePrometheusKeepsBackslashAndInvalidNamesApart(t *testing.T) {
	snap, stats := procgroup.Aggregate(slices.Values([]procgroup.Record{
		record(1, "app\xff", 10, 0),
		record(2, `app\xff`, 20, 0),
	}))
	rep := Build(snap, stats, Options{}, fixedTime)

	var buf bytes.Buffer
	if err := WritePrometheus(&buf, rep); err != nil {
		t.Fatalf("WritePrometheus: %v", err)
	}
	if count := testutil.CollectAndCount(NewCollector(rep), "topgroup_group_memory_bytes"); count != 2 {
		t.Fatalf("expected 2 memory series, got %d", count)
	}
	for _, want := range []string{
		`topgroup_group_memory_bytes{name="app\\xff"} 10000`,
		`topgroup_group_memory_bytes{name="app\\\\xff"} 20000`,
	} {
		if !strings.Contains(buf.String(), want) {
			t.Fatalf("expected %q in output:\n%s", want, buf.String())
		}
	}
}

func TestWriteUnknownFormat(t *testing.T) {
	err := Write(&bytes.Buffer{}, Format("csv"), Report{}, TextOptions{})
	if !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}
