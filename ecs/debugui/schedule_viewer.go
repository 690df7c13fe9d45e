package debugui

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

// ScheduleRow joins a scheduled system with its execution statistics.
type ScheduleRow struct {
	Stage      int
	System     ecs.SystemId
	Reads      []string
	Writes     []string
	DependsOn  []ecs.SystemId
	Executions int64
	Skips      int64
	Errors     int64
	Avg        time.Duration
	LastError  string
}

// ScheduleViewer shows the stages of the built schedule and how each system
// has been doing.
type ScheduleViewer struct {
	showClaims bool
	yaml       string
}

func NewScheduleViewer() *ScheduleViewer {
	return &ScheduleViewer{showClaims: true}
}

func (sv *ScheduleViewer) Render(s *ecs.Scheduler) {
	if !imgui.BeginV("Schedule", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}
	defer imgui.End()

	schedule := s.Schedule()
	if schedule == nil {
		imgui.Text("Schedule not built yet")
		return
	}

	stats := s.GetStats()
	imgui.Text(fmt.Sprintf("Stages: %d  Systems: %d  State: %s", schedule.Len(), stats.SystemCount, s.State()))
	imgui.Checkbox("Show claims", &sv.showClaims)
	imgui.SameLine()
	if imgui.Button("Dump YAML") {
		var buf bytes.Buffer
		if err := schedule.WriteYAML(&buf); err != nil {
			sv.yaml = err.Error()
		} else {
			sv.yaml = buf.String()
		}
	}

	columns := int32(7)
	if sv.showClaims {
		columns += 2
	}

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsScrollY
	if imgui.BeginTableV("ScheduleTable", columns, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Stage")
		imgui.TableSetupColumn("System")
		imgui.TableSetupColumn("Depends On")
		imgui.TableSetupColumn("Runs")
		imgui.TableSetupColumn("Skips")
		imgui.TableSetupColumn("Errors")
		imgui.TableSetupColumn("Avg")
		if sv.showClaims {
			imgui.TableSetupColumn("Reads")
			imgui.TableSetupColumn("Writes")
		}
		imgui.TableHeadersRow()

		for _, row := range scheduleRows(schedule, stats) {
			imgui.TableNextRow()
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Stage))
			imgui.TableNextColumn()
			imgui.Text(string(row.System))
			imgui.TableNextColumn()
			imgui.Text(joinIds(row.DependsOn))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Executions))
			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", row.Skips))
			imgui.TableNextColumn()
			if row.LastError != "" {
				imgui.Text(fmt.Sprintf("%d (%s)", row.Errors, row.LastError))
			} else {
				imgui.Text(fmt.Sprintf("%d", row.Errors))
			}
			imgui.TableNextColumn()
			imgui.Text(row.Avg.String())
			if sv.showClaims {
				imgui.TableNextColumn()
				imgui.Text(strings.Join(row.Reads, ", "))
				imgui.TableNextColumn()
				imgui.Text(strings.Join(row.Writes, ", "))
			}
		}
		imgui.EndTable()
	}

	if sv.yaml != "" && imgui.TreeNodeStr("YAML") {
		imgui.Text(sv.yaml)
		imgui.TreePop()
	}
}

// scheduleRows lists systems stage by stage in execution order.
func scheduleRows(schedule *ecs.Schedule, stats *ecs.SchedulerStats) []ScheduleRow {
	byName := make(map[string]ecs.SystemStats, len(stats.Systems))
	for _, st := range stats.Systems {
		byName[st.Name] = st
	}

	var rows []ScheduleRow
	for _, stage := range schedule.Stages() {
		for _, id := range stage.Systems {
			info, _ := schedule.System(id)
			row := ScheduleRow{
				Stage:     stage.Index,
				System:    id,
				DependsOn: info.DependsOn,
			}
			for _, claim := range info.Claims {
				if claim.Mode == ecs.AccessWrite {
					row.Writes = append(row.Writes, claim.Key.String())
				} else {
					row.Reads = append(row.Reads, claim.Key.String())
				}
			}
			if st, ok := byName[string(id)]; ok {
				row.Executions = st.ExecutionCount
				row.Skips = st.SkipCount
				row.Errors = st.ErrorCount
				row.Avg = st.AvgDuration
				row.LastError = st.LastError
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func joinIds(ids []ecs.SystemId) string {
	names := make([]string, len(ids))
	for i, id := range ids {
		names[i] = string(id)
	}
	return strings.Join(names, ", ")
}
