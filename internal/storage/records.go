package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/cabinz/gym-track-visualizer/internal/models"
	"github.com/cabinz/gym-track-visualizer/internal/records"
)

var (
	recordColumns = []string{"id", "user_id", "source", "date", "name", "gym", "exercise_order"}
	setColumns    = []string{"record_id", "set_index", "weight", "reps"}
)

// ReplaceDays deletes the user's records from source on every date present in
// recs and inserts recs, atomically. Re-importing a day therefore reflects the
// latest file.
func (db *DB) ReplaceDays(ctx context.Context, userID int, source string, recs []models.Record) (int64, int64, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("beginning tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, day := range distinctDays(recs) {
		if _, err := deleteRecords(ctx, tx, day, source, userID); err != nil {
			return 0, 0, err
		}
	}
	n, sets, err := insertRecords(ctx, tx, userID, recs)
	if err != nil {
		return 0, 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, 0, fmt.Errorf("committing records: %w", err)
	}
	return n, sets, nil
}

func deleteRecords(ctx context.Context, q querier, date time.Time, source string, userID int) (int64, error) {
	tag, err := q.Exec(ctx,
		`DELETE FROM records WHERE date = $1 AND source = $2 AND user_id = $3`,
		models.DateOnly(date), source, userID)
	if err != nil {
		return 0, fmt.Errorf("deleting records for %s: %w", date.Format("2006-01-02"), err)
	}
	return tag.RowsAffected(), nil
}

func insertRecords(ctx context.Context, q querier, userID int, recs []models.Record) (int64, int64, error) {
	rows, sets := copyRows(userID, recs)
	n, err := q.CopyFrom(ctx, pgx.Identifier{"records"}, recordColumns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, 0, fmt.Errorf("copying records: %w", err)
	}
	s, err := q.CopyFrom(ctx, pgx.Identifier{"record_sets"}, setColumns, pgx.CopyFromRows(sets))
	if err != nil {
		return 0, 0, fmt.Errorf("copying record sets: %w", err)
	}
	return n, s, nil
}

// copyRows flattens records into COPY rows. Missing IDs are filled in place.
// Sets with neither weight nor reps are not stored.
func copyRows(userID int, recs []models.Record) (recordRows, setRows [][]any) {
	for i := range recs {
		r := &recs[i]
		if r.ID == uuid.Nil {
			r.ID = uuid.New()
		}
		var order any
		if r.Order != nil {
			order = int32(*r.Order)
		}
		recordRows = append(recordRows, []any{
			r.ID, userID, r.Source, r.Day(), r.Name, r.Gym, order,
		})
		for _, idx := range models.SetColumnsOf([]models.Record{*r}) {
			s := r.Sets[idx]
			if s.Weight == nil && s.Reps == nil {
				continue
			}
			setRows = append(setRows, []any{r.ID, int32(idx), s.Weight, s.Reps})
		}
	}
	return recordRows, setRows
}

func distinctDays(recs []models.Record) []time.Time {
	seen := map[time.Time]bool{}
	var days []time.Time
	for _, r := range recs {
		d := r.Day()
		if !seen[d] {
			seen[d] = true
			days = append(days, d)
		}
	}
	return days
}

// QueryRecords loads the user's records matching f, ordered by date and
// session order. SetColumns of the result is the union of stored set indices.
func (db *DB) QueryRecords(ctx context.Context, f records.Filter, userID int) (*models.Table, error) {
	gyms := f.Gyms
	if gyms == nil {
		gyms = []string{}
	}
	rows, err := db.Pool.Query(ctx,
		`SELECT r.id, r.date, r.name, r.gym, r.exercise_order, r.source,
		        s.set_index, s.weight, s.reps
		 FROM records r
		 LEFT JOIN record_sets s ON s.record_id = r.id
		 WHERE r.user_id = $1
		   AND ($2::date IS NULL OR r.date >= $2::date)
		   AND ($3::date IS NULL OR r.date <= $3::date)
		   AND (cardinality($4::text[]) = 0 OR r.gym = ANY($4::text[]))
		   AND ($5::text = '' OR lower(r.name) = lower($5::text))
		 ORDER BY r.date, r.exercise_order NULLS LAST, r.name, r.id, s.set_index`,
		userID, dateParam(f.Start), dateParam(f.End), gyms, f.Name)
	if err != nil {
		return nil, fmt.Errorf("querying records: %w", err)
	}
	defer rows.Close()

	var c collector
	for rows.Next() {
		var row recordRow
		if err := rows.Scan(&row.id, &row.date, &row.name, &row.gym, &row.order, &row.source,
			&row.setIndex, &row.weight, &row.reps); err != nil {
			return nil, fmt.Errorf("scanning record: %w", err)
		}
		c.add(row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating records: %w", err)
	}
	return c.table(), nil
}

func dateParam(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.DateOnly(*t)
	return &d
}

// recordRow is one record joined with at most one of its sets.
type recordRow struct {
	id       uuid.UUID
	date     time.Time
	name     string
	gym      string
	order    *int32
	source   string
	setIndex *int32
	weight   *float64
	reps     *float64
}

// collector folds joined rows back into records, keeping row order.
type collector struct {
	recs  []models.Record
	index map[uuid.UUID]int
}

func (c *collector) add(row recordRow) {
	if c.index == nil {
		c.index = map[uuid.UUID]int{}
	}
	i, ok := c.index[row.id]
	if !ok {
		r := models.Record{
			ID:     row.id,
			Date:   models.DateOnly(row.date),
			Name:   row.name,
			Gym:    row.gym,
			Source: row.source,
			Sets:   map[int]models.SetEntry{},
		}
		if row.order != nil {
			o := int(*row.order)
			r.Order = &o
		}
		c.recs = append(c.recs, r)
		i = len(c.recs) - 1
		c.index[row.id] = i
	}
	if row.setIndex != nil {
		c.recs[i].Sets[int(*row.setIndex)] = models.SetEntry{Weight: row.weight, Reps: row.reps}
	}
}

func (c *collector) table() *models.Table {
	return &models.Table{SetColumns: models.SetColumnsOf(c.recs), Records: c.recs}
}

// ExerciseStat summarizes one exercise name.
type ExerciseStat struct {
	Name      string    `json:"name"`
	Records   int64     `json:"records"`
	FirstDate time.Time `json:"first_date"`
	LastDate  time.Time `json:"last_date"`
}

// ListExercises returns the user's exercise names with record counts and date
// span, most recently trained first.
func (db *DB) ListExercises(ctx context.Context, userID int) ([]ExerciseStat, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT name, COUNT(*), MIN(date), MAX(date)
		 FROM records
		 WHERE user_id = $1
		 GROUP BY name
		 ORDER BY MAX(date) DESC, name`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying exercises: %w", err)
	}
	defer rows.Close()

	var result []ExerciseStat
	for rows.Next() {
		var e ExerciseStat
		if err := rows.Scan(&e.Name, &e.Records, &e.FirstDate, &e.LastDate); err != nil {
			return nil, fmt.Errorf("scanning exercise: %w", err)
		}
		result = append(result, e)
	}
	return result, rows.Err()
}
