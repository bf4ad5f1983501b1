package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

// resultRepo implements ResultRepo.
type resultRepo struct {
	db  *sql.DB
	seq *sequenceCounter
}

func (r *resultRepo) SaveResult(ctx context.Context, data AssessmentResultData) error {
	sections, err := json.Marshal(data.Sections)
	if err != nil {
		return fmt.Errorf("encode sections: %w", err)
	}
	strengths, err := json.Marshal(nonNil(data.Strengths))
	if err != nil {
		return fmt.Errorf("encode strengths: %w", err)
	}
	weaknesses, err := json.Marshal(nonNil(data.Weaknesses))
	if err != nil {
		return fmt.Errorf("encode weaknesses: %w", err)
	}

	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		seqNum, err := r.seq.Next(ctx, tx)
		if err != nil {
			return fmt.Errorf("next sequence: %w", err)
		}

		query, args := builder.Insert(tableAssessmentResult).
			Columns("sequence", "timestamp", "session_id", "learner_id", "role", "company", "level",
				"overall", "alignment", "band", "sections", "strengths", "weaknesses").
			Values(seqNum, time.Now().UTC(), data.SessionID, data.LearnerID, data.Role, data.Company, data.Level,
				data.Overall, data.Alignment, data.Band, string(sections), string(strengths), string(weaknesses)).
			Query()

		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("save assessment result: %w", err)
		}
		return nil
	})
}

func (r *resultRepo) ListResults(ctx context.Context, learnerID string, opts QueryOpts) ([]AssessmentResultRecord, error) {
	sel := builder.Select("id", "sequence", "timestamp", "session_id", "learner_id", "role", "company", "level",
		"overall", "alignment", "band", "sections", "strengths", "weaknesses").
		From(entsql.Table(tableAssessmentResult))
	query, args := applyQueryOpts(sel, opts, entsql.EQ("learner_id", learnerID)).Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query assessment results: %w", err)
	}
	defer rows.Close()

	var out []AssessmentResultRecord
	for rows.Next() {
		var (
			rec                            AssessmentResultRecord
			sections, strengths, weaknesses string
		)
		if err := rows.Scan(&rec.ID, &rec.Sequence, &rec.Timestamp,
			&rec.SessionID, &rec.LearnerID, &rec.Role, &rec.Company, &rec.Level,
			&rec.Overall, &rec.Alignment, &rec.Band,
			&sections, &strengths, &weaknesses); err != nil {
			return nil, fmt.Errorf("scan assessment result: %w", err)
		}
		if err := json.Unmarshal([]byte(sections), &rec.Sections); err != nil {
			return nil, fmt.Errorf("decode sections: %w", err)
		}
		if err := json.Unmarshal([]byte(strengths), &rec.Strengths); err != nil {
			return nil, fmt.Errorf("decode strengths: %w", err)
		}
		if err := json.Unmarshal([]byte(weaknesses), &rec.Weaknesses); err != nil {
			return nil, fmt.Errorf("decode weaknesses: %w", err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
