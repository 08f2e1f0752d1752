package migration

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// sectionOrder is the order sections appear in a backup.
var sectionOrder = []Section{
	SectionMetadata,
	SectionTasks,
	SectionRoles,
	SectionGoals,
	SectionMetrics,
	SectionTaskLog,
	SectionCheckIn,
	SectionIdeas,
	SectionSettings,
}

const summaryWidth = 60

// EncodeRows flattens snap into rows: the METADATA row first, then each
// section in order. Records without an id get one derived from their
// position. The METADATA row carries the revision of the rows after it.
func EncodeRows(snap *Snapshot) ([]Row, error) {
	var rows []Row

	for i, t := range snap.Tasks {
		if t.ID == "" {
			t.ID = fmt.Sprintf("task_%d", i)
		}
		data, err := marshalCompact(t)
		if err != nil {
			return nil, fmt.Errorf("failed to encode task %s: %w", t.ID, err)
		}
		rows = append(rows, Row{
			Section:   SectionTasks,
			Type:      TypeCurrentTask,
			ID:        t.ID,
			Data:      data,
			Timestamp: t.CreatedAt,
			Summary:   truncate(fmt.Sprintf("[%s] %s", t.Role, t.Description)),
		})
	}

	for i, name := range snap.Roles {
		data, err := marshalCompact(rolePayload{Name: name})
		if err != nil {
			return nil, fmt.Errorf("failed to encode role %q: %w", name, err)
		}
		rows = append(rows, Row{
			Section: SectionRoles,
			Type:    TypeRole,
			ID:      fmt.Sprintf("role_%d", i),
			Data:    data,
			Summary: truncate(name),
		})
	}

	for i, g := range snap.Goals {
		if g.ID == "" {
			g.ID = fmt.Sprintf("goal_%d", i)
		}
		data, err := marshalCompact(g)
		if err != nil {
			return nil, fmt.Errorf("failed to encode goal %s: %w", g.ID, err)
		}
		summary := fmt.Sprintf("[%s] %s", g.Role, g.Name)
		if g.IsDefault {
			summary += " (default)"
		}
		rows = append(rows, Row{
			Section:   SectionGoals,
			Type:      TypeGoal,
			ID:        g.ID,
			Data:      data,
			Timestamp: g.CreatedAt,
			Summary:   truncate(summary),
		})
	}

	for i, m := range snap.Metrics {
		data, err := marshalCompact(m)
		if err != nil {
			return nil, fmt.Errorf("failed to encode metric %d: %w", i, err)
		}
		rows = append(rows, Row{
			Section:   SectionMetrics,
			Type:      TypeWeeklyMetric,
			ID:        fmt.Sprintf("metric_%d", i),
			Data:      data,
			Timestamp: m.Timestamp,
			Summary:   fmt.Sprintf("%d/%d completed", m.CompletedTasks, m.TotalTasks),
		})
	}

	for i, entry := range snap.TaskLog {
		for j, t := range entry.Tasks {
			id := t.ID
			if id == "" {
				id = fmt.Sprintf("log_%d_%d", i, j)
			}
			data, err := marshalCompact(t)
			if err != nil {
				return nil, fmt.Errorf("failed to encode completed task %s: %w", id, err)
			}
			rows = append(rows, Row{
				Section:   SectionTaskLog,
				Type:      TypeCompletedTask,
				ID:        id,
				Data:      data,
				Timestamp: entry.Timestamp,
				Summary:   truncate(t.Description),
			})
		}
	}

	if len(snap.CheckIn) > 0 {
		data, err := marshalCompact(snap.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("failed to encode check-in state: %w", err)
		}
		rows = append(rows, Row{
			Section: SectionCheckIn,
			Type:    TypeCheckInState,
			ID:      "checkin",
			Data:    data,
			Summary: "check-in in progress",
		})
	}

	for i, idea := range snap.Ideas {
		if idea.ID == "" {
			idea.ID = fmt.Sprintf("idea_%d", i)
		}
		data, err := marshalCompact(idea)
		if err != nil {
			return nil, fmt.Errorf("failed to encode idea %s: %w", idea.ID, err)
		}
		rows = append(rows, Row{
			Section:   SectionIdeas,
			Type:      TypeIdea,
			ID:        idea.ID,
			Data:      data,
			Timestamp: idea.UpdatedAt,
			Summary:   truncate(idea.Description),
		})
	}

	for _, f := range settingFields {
		if !f.present(&snap.Settings) {
			continue
		}
		data, err := encodeSetting(f, &snap.Settings)
		if err != nil {
			return nil, err
		}
		rows = append(rows, Row{
			Section: SectionSettings,
			Type:    TypeSetting,
			ID:      f.key,
			Data:    data,
			Summary: f.key,
		})
	}

	meta := snap.Meta
	meta.SnapshotRev = rowsRev(rows)
	data, err := marshalCompact(meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode metadata: %w", err)
	}
	header := Row{
		Section:   SectionMetadata,
		Type:      TypeExportInfo,
		ID:        meta.ExportID,
		Data:      data,
		Timestamp: meta.ExportDate,
		Summary:   fmt.Sprintf("%s backup v%s", productName(meta.Product), meta.Version),
	}
	if header.ID == "" {
		header.ID = TypeExportInfo
	}

	return append([]Row{header}, rows...), nil
}

// rolePayload wraps a role name in the ROLES section.
type rolePayload struct {
	Name string `json:"name"`
}

// countSections returns the number of distinct sections present in rows.
func countSections(rows []Row) int {
	seen := make(map[Section]bool, len(sectionOrder))
	for _, r := range rows {
		seen[r.Section] = true
	}
	return len(seen)
}

func productName(p string) string {
	if p == "" {
		p = DefaultProduct
	}
	return strings.ToUpper(p[:1]) + p[1:]
}

func truncate(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if utf8.RuneCountInString(s) <= summaryWidth {
		return s
	}
	r := []rune(s)
	return string(r[:summaryWidth-3]) + "..."
}
