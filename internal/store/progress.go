package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// progressRepo implements ProgressRepo.
type progressRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

var progressSelectColumns = []string{
	"learner_id", "course_id", "module_id", "status",
	"theory_completed", "video_completed", "quiz_score", "quiz_answers",
	"project_status", "deployed_link", "github_link", "updated_at",
}

func (r *progressRepo) Load(ctx context.Context, learnerID, courseID string) ([]ModuleProgressRecord, error) {
	query, args := builder.Select(progressSelectColumns...).
		From(entsql.Table(tableModuleProgress)).
		Where(entsql.And(
			entsql.EQ("learner_id", learnerID),
			entsql.EQ("course_id", courseID),
		)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query module progress: %w", err)
	}
	defer rows.Close()

	var out []ModuleProgressRecord
	for rows.Next() {
		var (
			rec     ModuleProgressRecord
			score   sql.NullInt64
			answers sql.NullString
		)
		if err := rows.Scan(
			&rec.LearnerID, &rec.CourseID, &rec.ModuleID, &rec.Status,
			&rec.TheoryCompleted, &rec.VideoCompleted, &score, &answers,
			&rec.ProjectStatus, &rec.DeployedLink, &rec.GithubLink, &rec.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan module progress: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			rec.QuizScore = &v
		}
		if answers.Valid && answers.String != "" {
			if err := json.Unmarshal([]byte(answers.String), &rec.QuizAnswers); err != nil {
				return nil, fmt.Errorf("decode quiz answers for %s: %w", rec.ModuleID, err)
			}
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (r *progressRepo) Apply(ctx context.Context, updates []ModuleProgressRecord, events []ProgressEventData) error {
	now := time.Now().UTC()
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		for _, u := range updates {
			if err := upsertProgress(ctx, tx, u, now); err != nil {
				return err
			}
		}
		for _, e := range events {
			if err := r.appendEvent(ctx, tx, e, now); err != nil {
				return err
			}
		}
		return nil
	})
}

func upsertProgress(ctx context.Context, q execQuerier, u ModuleProgressRecord, now time.Time) error {
	var score, answers any
	if u.QuizScore != nil {
		score = *u.QuizScore
	}
	if u.QuizAnswers != nil {
		b, err := json.Marshal(u.QuizAnswers)
		if err != nil {
			return fmt.Errorf("encode quiz answers: %w", err)
		}
		answers = string(b)
	}

	query, args := builder.Insert(tableModuleProgress).
		Columns(
			"learner_id", "course_id", "module_id", "status",
			"theory_completed", "video_completed", "quiz_score", "quiz_answers",
			"project_status", "deployed_link", "github_link", "updated_at",
		).
		Values(
			u.LearnerID, u.CourseID, u.ModuleID, u.Status,
			u.TheoryCompleted, u.VideoCompleted, score, answers,
			u.ProjectStatus, u.DeployedLink, u.GithubLink, now,
		).
		OnConflict(
			entsql.ConflictColumns("learner_id", "course_id", "module_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert progress %s/%s: %w", u.CourseID, u.ModuleID, err)
	}
	return nil
}

func (r *progressRepo) appendEvent(ctx context.Context, q execQuerier, e ProgressEventData, now time.Time) error {
	seqNum, err := r.seq.Next(ctx, q)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	var score any
	if e.QuizScore != nil {
		score = *e.QuizScore
	}
	query, args := builder.Insert(tableProgressEvents).
		Columns("sequence", "timestamp", "learner_id", "course_id", "module_id",
			"trigger_name", "from_stage", "to_stage", "quiz_score").
		Values(seqNum, now, e.LearnerID, e.CourseID, e.ModuleID,
			e.Trigger, e.From, e.To, score).
		Query()

	if _, err := q.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("save progress event: %w", err)
	}
	return nil
}

func (r *progressRepo) Courses(ctx context.Context, learnerID string) ([]string, error) {
	query, args := builder.Select("course_id").
		Distinct().
		From(entsql.Table(tableModuleProgress)).
		Where(entsql.EQ("learner_id", learnerID)).
		OrderBy("course_id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query enrolled courses: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan course id: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *progressRepo) Events(ctx context.Context, learnerID string, opts QueryOpts) ([]ProgressEventRecord, error) {
	sel := builder.Select("id", "sequence", "timestamp", "learner_id", "course_id", "module_id",
		"trigger_name", "from_stage", "to_stage", "quiz_score").
		From(entsql.Table(tableProgressEvents))
	query, args := applyQueryOpts(sel, opts, entsql.EQ("learner_id", learnerID)).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query progress events: %w", err)
	}
	defer rows.Close()

	var out []ProgressEventRecord
	for rows.Next() {
		var (
			rec   ProgressEventRecord
			score sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp,
			&rec.LearnerID, &rec.CourseID, &rec.ModuleID,
			&rec.Trigger, &rec.From, &rec.To, &score); err != nil {
			return nil, fmt.Errorf("scan progress event: %w", err)
		}
		if score.Valid {
			v := int(score.Int64)
			rec.QuizScore = &v
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
