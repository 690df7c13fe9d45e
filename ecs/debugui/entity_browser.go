package debugui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/AllenDang/cimgui-go/imgui"
	"github.com/plus3/realm/ecs"
)

type EntityInfo struct {
	ID             ecs.Entity
	ComponentTypes []string
}

const (
	columnEntity = iota
	columnGeneration
	columnComponents
	columnCount
)

// EntityBrowser lists live entities with their component types.
type EntityBrowser struct {
	entities      []EntityInfo
	cachedFrame   uint64
	cached        bool
	sortColumn    int
	sortAscending bool

	selected        ecs.Entity
	filterText      string
	filterComponent string
	perPage         int
	page            int
}

func NewEntityBrowser(perPage int) *EntityBrowser {
	return &EntityBrowser{
		sortColumn:    columnEntity,
		sortAscending: true,
		perPage:       perPage,
	}
}

// Selected returns the entity picked in the table, or zero.
func (eb *EntityBrowser) Selected() ecs.Entity {
	return eb.selected
}

// FilterByComponent restricts the table to entities holding the named type.
func (eb *EntityBrowser) FilterByComponent(typeName string) {
	eb.filterComponent = typeName
	eb.page = 0
}

func (eb *EntityBrowser) Render(storage *ecs.Storage, frame uint64) {
	if !imgui.BeginV("Entity Browser", nil, imgui.WindowFlagsNone) {
		imgui.End()
		return
	}

	if !eb.cached || eb.cachedFrame != frame {
		eb.entities = collectEntities(storage)
		sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
		eb.cachedFrame = frame
		eb.cached = true
	}
	if eb.selected != 0 && !storage.IsAlive(eb.selected) {
		eb.selected = 0
	}

	imgui.InputTextWithHint("##search", "Search...", &eb.filterText, imgui.InputTextFlagsNone, nil)
	imgui.SameLine()
	if imgui.Button("Clear Filter") {
		eb.filterText = ""
		eb.filterComponent = ""
	}
	if eb.filterComponent != "" {
		imgui.Text("Component: " + eb.filterComponent)
	}

	filtered := filterEntities(eb.entities, eb.filterText, eb.filterComponent)

	const tableFlags = imgui.TableFlagsBorders | imgui.TableFlagsRowBg | imgui.TableFlagsSortable | imgui.TableFlagsScrollY
	if imgui.BeginTableV("EntityTable", 4, tableFlags, imgui.NewVec2(0, 0), 0) {
		imgui.TableSetupColumn("Index")
		imgui.TableSetupColumn("Generation")
		imgui.TableSetupColumn("Components")
		imgui.TableSetupColumn("Count")
		imgui.TableHeadersRow()

		sortSpecs := imgui.TableGetSortSpecs()
		if sortSpecs.SpecsDirty() && sortSpecs.SpecsCount() > 0 {
			spec := sortSpecs.Specs()
			eb.sortColumn = int(spec.ColumnIndex())
			eb.sortAscending = spec.SortDirection() == imgui.SortDirectionAscending
			sortEntities(eb.entities, eb.sortColumn, eb.sortAscending)
			filtered = filterEntities(eb.entities, eb.filterText, eb.filterComponent)
			sortSpecs.SetSpecsDirty(false)
		}

		start, end := pageBounds(len(filtered), eb.page, eb.perPage)
		for _, entity := range filtered[start:end] {
			imgui.TableNextRow()

			imgui.TableNextColumn()
			if imgui.SelectableBoolV(fmt.Sprintf("%d", entity.ID.Index()), eb.selected == entity.ID, imgui.SelectableFlagsSpanAllColumns, imgui.NewVec2(0, 0)) {
				eb.selected = entity.ID
			}

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", entity.ID.Generation()))

			imgui.TableNextColumn()
			imgui.Text(strings.Join(entity.ComponentTypes, ", "))

			imgui.TableNextColumn()
			imgui.Text(fmt.Sprintf("%d", len(entity.ComponentTypes)))
		}

		imgui.EndTable()
	}

	if len(filtered) > eb.perPage {
		totalPages := (len(filtered) + eb.perPage - 1) / eb.perPage
		imgui.Text(fmt.Sprintf("Page %d / %d (%d entities)", eb.page+1, totalPages, len(filtered)))
		imgui.SameLine()
		if imgui.Button("Prev") && eb.page > 0 {
			eb.page--
		}
		imgui.SameLine()
		if imgui.Button("Next") && eb.page < totalPages-1 {
			eb.page++
		}
	} else {
		imgui.Text(fmt.Sprintf("Total: %d entities", len(filtered)))
	}

	imgui.End()
}

func collectEntities(storage *ecs.Storage) []EntityInfo {
	entities := make([]EntityInfo, 0, storage.Entities().Len())
	for e := range storage.Entities().All() {
		types := storage.ComponentTypes(e)
		names := make([]string, len(types))
		for i, t := range types {
			names[i] = t.String()
		}
		entities = append(entities, EntityInfo{ID: e, ComponentTypes: names})
	}
	return entities
}

func sortEntities(entities []EntityInfo, column int, ascending bool) {
	sort.SliceStable(entities, func(i, j int) bool {
		a, b := entities[i], entities[j]
		if !ascending {
			a, b = b, a
		}
		switch column {
		case columnGeneration:
			return a.ID.Generation() < b.ID.Generation()
		case columnComponents:
			return strings.Join(a.ComponentTypes, ",") < strings.Join(b.ComponentTypes, ",")
		case columnCount:
			return len(a.ComponentTypes) < len(b.ComponentTypes)
		default:
			return a.ID.Index() < b.ID.Index()
		}
	})
}

// filterEntities matches text against the index and component names,
// case-insensitively. A non-empty component must be held exactly.
func filterEntities(entities []EntityInfo, text, component string) []EntityInfo {
	if text == "" && component == "" {
		return entities
	}

	filtered := make([]EntityInfo, 0, len(entities))
	needle := strings.ToLower(text)

	for _, entity := range entities {
		if component != "" && !containsString(entity.ComponentTypes, component) {
			continue
		}
		if needle != "" {
			idStr := fmt.Sprintf("%d", entity.ID.Index())
			components := strings.ToLower(strings.Join(entity.ComponentTypes, " "))
			if !strings.Contains(idStr, needle) && !strings.Contains(components, needle) {
				continue
			}
		}
		filtered = append(filtered, entity)
	}
	return filtered
}

func pageBounds(total, page, perPage int) (int, int) {
	start := page * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}
	return start, end
}

func containsString(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
