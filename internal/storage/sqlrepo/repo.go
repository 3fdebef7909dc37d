// Package sqlrepo implements domain.ReviewRepository on database/sql. The
// mysql and sqlite packages open the database and apply their schema.
package sqlrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"app_reviews/internal/domain"
)

// rows per INSERT statement; keeps the placeholder count under driver limits
const batchSize = 500

func valInt64(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
func valStr(p *string) any {
	if p == nil {
		return nil
	}
	return *p
}

// valRating stores NaN and ±Inf as NULL; neither database accepts them.
func valRating(f float64) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return f
}
func valTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC()
}

// dbTime scans a DATETIME column whether the driver hands back a time.Time
// (mysql with parseTime) or text (sqlite).
type dbTime struct {
	Time  time.Time
	Valid bool
}

var dbTimeLayouts = []string{
	"2006-01-02 15:04:05.999999999-07:00",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999 -0700 MST",
	"2006-01-02 15:04:05.999999999",
}

func (t *dbTime) Scan(v any) error {
	switch x := v.(type) {
	case nil:
		*t = dbTime{}
		return nil
	case time.Time:
		*t = dbTime{Time: x, Valid: true}
		return nil
	case []byte:
		return t.parse(string(x))
	case string:
		return t.parse(x)
	default:
		return fmt.Errorf("scan time: unsupported %T", v)
	}
}

func (t *dbTime) parse(s string) error {
	for _, layout := range dbTimeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			*t = dbTime{Time: ts, Valid: true}
			return nil
		}
	}
	return fmt.Errorf("scan time: unrecognised %q", s)
}

func ptrInt64(n sql.NullInt64) *int64 {
	if !n.Valid {
		return nil
	}
	v := n.Int64
	return &v
}

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) SaveRun(ctx context.Context, rep domain.Report, reviews []domain.Review) error {
	body, err := json.Marshal(rep)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after Commit

	if _, err := tx.ExecContext(ctx, insertReportSQL,
		rep.ID, rep.Source, string(rep.Policy), rep.GeneratedAt.UTC(), string(body),
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}

	for start := 0; start < len(reviews); start += batchSize {
		end := min(start+batchSize, len(reviews))
		if err := insertReviews(ctx, tx, rep.ID, start, reviews[start:end]); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func insertReviews(ctx context.Context, tx *sql.Tx, reportID string, offset int, rs []domain.Review) error {
	values := make([]string, 0, len(rs))
	args := make([]any, 0, len(rs)*17)
	for i, rv := range rs {
		values = append(values, reviewPlaceholders)
		args = append(args,
			reportID,
			offset+i,
			valInt64(rv.ReviewID),
			rv.AppName,
			rv.AppCategory,
			rv.ReviewText,
			rv.ReviewLanguage,
			valRating(rv.Rating),
			valTime(rv.ReviewDate),
			rv.VerifiedPurchase,
			rv.DeviceType,
			valInt64(rv.NumHelpfulVotes),
			rv.AppVersion,
			valInt64(rv.User.UserID),
			valInt64(rv.User.UserAge),
			rv.User.UserCountry,
			valStr(rv.User.UserGender),
		)
	}
	if _, err := tx.ExecContext(ctx, insertReviewsPrefix+strings.Join(values, ","), args...); err != nil {
		return fmt.Errorf("insert reviews %d..%d: %w", offset, offset+len(rs), err)
	}
	return nil
}

func (r *Repo) GetReport(ctx context.Context, id string) (domain.Report, error) {
	return r.scanReport(r.db.QueryRowContext(ctx, getReportSQL, id))
}

func (r *Repo) LatestReport(ctx context.Context) (domain.Report, error) {
	return r.scanReport(r.db.QueryRowContext(ctx, latestReportSQL))
}

func (r *Repo) scanReport(row *sql.Row) (domain.Report, error) {
	var body []byte
	if err := row.Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Report{}, domain.ErrNotFound
		}
		return domain.Report{}, err
	}
	var rep domain.Report
	if err := json.Unmarshal(body, &rep); err != nil {
		return domain.Report{}, fmt.Errorf("decode report: %w", err)
	}
	return rep, nil
}

// ListReviews returns the reviews of one run in their original order. An
// empty ReportID reads the latest run.
func (r *Repo) ListReviews(ctx context.Context, q domain.ReviewQuery) ([]domain.Review, error) {
	reportID := q.ReportID
	if reportID == "" {
		if err := r.db.QueryRowContext(ctx, latestReportIDSQL).Scan(&reportID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.ErrNotFound
			}
			return nil, err
		}
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 50
	}

	rows, err := r.db.QueryContext(ctx, listReviewsSQL, reportID, q.App, q.App, q.Lang, q.Lang, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Review{}
	for rows.Next() {
		var (
			rv                         domain.Review
			reviewID, votes, uid, uage sql.NullInt64
			rating                     sql.NullFloat64
			date                       dbTime
			gender                     sql.NullString
		)
		if err := rows.Scan(
			&reviewID, &rv.AppName, &rv.AppCategory, &rv.ReviewText, &rv.ReviewLanguage, &rating,
			&date, &rv.VerifiedPurchase, &rv.DeviceType, &votes, &rv.AppVersion,
			&uid, &uage, &rv.User.UserCountry, &gender,
		); err != nil {
			return nil, err
		}
		rv.ReviewID = ptrInt64(reviewID)
		rv.NumHelpfulVotes = ptrInt64(votes)
		rv.User.UserID = ptrInt64(uid)
		rv.User.UserAge = ptrInt64(uage)
		rv.Rating = math.NaN()
		if rating.Valid {
			rv.Rating = rating.Float64
		}
		if date.Valid {
			rv.ReviewDate = date.Time.UTC()
		}
		if gender.Valid {
			g := gender.String
			rv.User.UserGender = &g
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
