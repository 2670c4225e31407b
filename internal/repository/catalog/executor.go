package catalog

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kailas-cloud/contentiq/internal/domain"
	"github.com/kailas-cloud/contentiq/internal/domain/content"
	"github.com/kailas-cloud/contentiq/internal/domain/plan"
)

// row is one in-flight pipeline document: a content record plus the
// fields flattened out of joins so far.
type row struct {
	c      content.Content
	fields map[string]string
}

// pipeline is the executor's running state. Rows and groups are mutually
// exclusive; a group stage switches from one to the other.
type pipeline struct {
	rows    []row
	groups  []plan.GroupCount
	grouped bool
	counted bool
	count   int64
}

// Execute runs a plan client-side: read the tenant's content set, resolve
// joins through the attribute records, then filter and shape. The first
// stage must be a tenant scope.
func (r *Repo) Execute(ctx context.Context, p plan.Plan) (plan.Result, error) {
	if len(p.Stages) == 0 {
		return plan.Result{}, fmt.Errorf("empty plan: %w", domain.ErrTenantRequired)
	}
	scope, ok := p.Stages[0].(plan.TenantScope)
	if !ok || scope.TenantID == "" {
		return plan.Result{}, fmt.Errorf("plan must begin with a tenant scope: %w", domain.ErrTenantRequired)
	}

	contents, err := r.loadContents(ctx, scope.TenantID)
	if err != nil {
		return plan.Result{}, err
	}

	var attrs map[string]content.Attribute
	if needsAttributes(p.Stages) {
		attrs, err = r.loadAttributes(ctx, scope.TenantID)
		if err != nil {
			return plan.Result{}, err
		}
	}

	pl := &pipeline{rows: make([]row, 0, len(contents))}
	for _, c := range contents {
		pl.rows = append(pl.rows, row{c: c, fields: map[string]string{}})
	}

	for _, stage := range p.Stages[1:] {
		switch st := stage.(type) {
		case plan.TenantScope:
			return plan.Result{}, fmt.Errorf("tenant scope must be the first stage only")
		case plan.Join:
			pl.rows = applyJoin(pl.rows, st, attrs)
		case plan.Filter:
			pl.rows = applyFilter(pl.rows, st, attrs)
		case plan.Group:
			pl.applyGroup(st)
		case plan.Sort:
			pl.applySort(st)
		case plan.Limit:
			pl.applyLimit(st)
		case plan.Count:
			pl.count = int64(len(pl.rows))
			pl.counted = true
		default:
			return plan.Result{}, fmt.Errorf("unsupported plan stage %T", stage)
		}
	}

	return pl.result(), nil
}

func needsAttributes(stages []plan.Stage) bool {
	for _, stage := range stages {
		switch st := stage.(type) {
		case plan.Join:
			return true
		case plan.Filter:
			for _, cond := range st.Conditions {
				if cond.Exists != nil && strings.Contains(cond.Field, ".") {
					return true
				}
			}
		}
	}
	return false
}

// applyJoin flattens matching attribute references into the output
// alias, one row per match. Rows with no match are dropped.
func applyJoin(rows []row, j plan.Join, attrs map[string]content.Attribute) []row {
	var out []row
	for _, rw := range rows {
		for _, id := range rw.c.AttributeIDs() {
			attr, ok := attrs[id]
			if !ok {
				continue
			}
			if !attrBelongsToJoin(attr, j) {
				continue
			}
			if len(j.Values) > 0 && !containsFold(j.Values, attr.Name()) {
				continue
			}
			flat := row{c: rw.c, fields: make(map[string]string, len(rw.fields)+1)}
			for k, v := range rw.fields {
				flat.fields[k] = v
			}
			flat.fields[j.As] = attr.Name()
			out = append(out, flat)
		}
	}
	return out
}

// attrBelongsToJoin scopes the lookup to one category, by id when the
// plan carries one, otherwise by the output alias.
func attrBelongsToJoin(attr content.Attribute, j plan.Join) bool {
	if j.CategoryID != "" {
		return attr.CategoryID() == j.CategoryID
	}
	return attr.Category() == j.As
}

func applyFilter(rows []row, f plan.Filter, attrs map[string]content.Attribute) []row {
	out := rows[:0]
	for _, rw := range rows {
		if matchesAll(rw, f.Conditions, attrs) {
			out = append(out, rw)
		}
	}
	return out
}

func matchesAll(rw row, conds []plan.Condition, attrs map[string]content.Attribute) bool {
	for _, cond := range conds {
		if !matches(rw, cond, attrs) {
			return false
		}
	}
	return true
}

func matches(rw row, cond plan.Condition, attrs map[string]content.Attribute) bool {
	if cond.Exists != nil {
		return matchesExists(rw, cond, attrs)
	}
	if cond.Gte != "" || cond.Lt != "" {
		return matchesDateWindow(rw.c.PublishedAt(), cond)
	}

	value := fieldValue(rw, cond.Field)
	if cond.Eq != "" {
		return strings.EqualFold(value, cond.Eq)
	}
	if len(cond.In) > 0 {
		return containsFold(cond.In, value)
	}
	return true
}

// matchesExists handles presence checks. A dotted field of the form
// "<localField>.<Category>" asks whether the record references any
// attribute of that category.
func matchesExists(rw row, cond plan.Condition, attrs map[string]content.Attribute) bool {
	present := false
	if _, category, dotted := strings.Cut(cond.Field, "."); dotted {
		for _, id := range rw.c.AttributeIDs() {
			if attr, ok := attrs[id]; ok && attr.Category() == category {
				present = true
				break
			}
		}
	} else {
		present = fieldValue(rw, cond.Field) != ""
	}
	return present == *cond.Exists
}

func matchesDateWindow(publishedAt time.Time, cond plan.Condition) bool {
	if publishedAt.IsZero() {
		return false
	}
	if cond.Gte != "" {
		start, err := time.Parse(time.RFC3339, cond.Gte)
		if err != nil || publishedAt.Before(start) {
			return false
		}
	}
	if cond.Lt != "" {
		end, err := time.Parse(time.RFC3339, cond.Lt)
		if err != nil || !publishedAt.Before(end) {
			return false
		}
	}
	return true
}

func containsFold(values []string, s string) bool {
	for _, v := range values {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}

func fieldValue(rw row, field string) string {
	switch field {
	case "language":
		return rw.c.Language()
	case "gated":
		return strconv.FormatBool(rw.c.Gated())
	case "publishedAt", "published_at":
		if rw.c.PublishedAt().IsZero() {
			return ""
		}
		return rw.c.PublishedAt().UTC().Format(time.RFC3339)
	case "title":
		return rw.c.Title()
	case "url":
		return rw.c.URL()
	}
	return rw.fields[field]
}

func (pl *pipeline) applyGroup(g plan.Group) {
	type bucket struct {
		keys  map[string]string
		count int64
	}
	buckets := make(map[string]*bucket)
	var order []string

	for _, rw := range pl.rows {
		keys := make(map[string]string, len(g.Keys))
		parts := make([]string, 0, len(g.Keys))
		for _, k := range g.Keys {
			v := fieldValue(rw, k)
			keys[k] = v
			parts = append(parts, v)
		}
		id := strings.Join(parts, "\x1f")
		b, ok := buckets[id]
		if !ok {
			b = &bucket{keys: keys}
			buckets[id] = b
			order = append(order, id)
		}
		b.count++
	}

	pl.groups = make([]plan.GroupCount, 0, len(order))
	for _, id := range order {
		pl.groups = append(pl.groups, plan.GroupCount{Keys: buckets[id].keys, Count: buckets[id].count})
	}
	pl.rows = nil
	pl.grouped = true
}

func (pl *pipeline) applySort(s plan.Sort) {
	if pl.grouped {
		sort.SliceStable(pl.groups, func(i, j int) bool {
			if s.Desc {
				return pl.groups[i].Count > pl.groups[j].Count
			}
			return pl.groups[i].Count < pl.groups[j].Count
		})
		return
	}
	sort.SliceStable(pl.rows, func(i, j int) bool {
		vi, vj := fieldValue(pl.rows[i], s.Field), fieldValue(pl.rows[j], s.Field)
		if s.Desc {
			return vi > vj
		}
		return vi < vj
	})
}

func (pl *pipeline) applyLimit(l plan.Limit) {
	if l.N < 0 {
		return
	}
	if pl.grouped {
		if len(pl.groups) > l.N {
			pl.groups = pl.groups[:l.N]
		}
		return
	}
	if len(pl.rows) > l.N {
		pl.rows = pl.rows[:l.N]
	}
}

func (pl *pipeline) result() plan.Result {
	if pl.counted {
		return plan.Result{Count: pl.count}
	}
	if pl.grouped {
		var total int64
		for _, g := range pl.groups {
			total += g.Count
		}
		return plan.Result{Groups: pl.groups, Count: total}
	}

	docs := make([]plan.Document, 0, len(pl.rows))
	for _, rw := range pl.rows {
		fields := make(map[string]string, len(rw.fields)+1)
		for k, v := range rw.fields {
			fields[k] = v
		}
		if rw.c.Language() != "" {
			fields["language"] = rw.c.Language()
		}
		docs = append(docs, plan.Document{
			ID:     rw.c.ID(),
			Title:  rw.c.Title(),
			URL:    rw.c.URL(),
			Fields: fields,
		})
	}
	return plan.Result{Documents: docs, Count: int64(len(docs))}
}
