package supabase

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"funneldeck-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

const presentationColumns = `id, user_id, project_id, structure_id, status, slides,
	generation_progress, total_expected_slides, customization, brand_context,
	error_message, created_at, updated_at`

func scanPresentation(row *sql.Row) (*models.Presentation, error) {
	var p models.Presentation
	err := row.Scan(
		&p.ID, &p.UserID, &p.ProjectID, &p.StructureID, &p.Status, &p.Slides,
		&p.GenerationProgress, &p.TotalExpectedSlides, &p.Customization, &p.BrandContext,
		&p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) CreatePresentation(ctx context.Context, userID, projectID, structureID uuid.UUID, totalExpected int, customization, brand json.RawMessage) (*models.Presentation, error) {
	var expected sql.NullInt64
	if totalExpected > 0 {
		expected = sql.NullInt64{Int64: int64(totalExpected), Valid: true}
	}
	if len(customization) == 0 {
		customization = json.RawMessage(`{}`)
	}
	if len(brand) == 0 {
		brand = json.RawMessage(`{}`)
	}

	row := d.db.QueryRowContext(ctx, `
		INSERT INTO presentations (id, user_id, project_id, structure_id, status, slides,
			generation_progress, total_expected_slides, customization, brand_context)
		VALUES ($1, $2, $3, $4, $5, '[]'::jsonb, 0, $6, $7, $8)
		RETURNING `+presentationColumns+`
	`, uuid.New(), userID, projectID, structureID, models.StatusGenerating, expected, customization, brand)

	p, err := scanPresentation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create presentation: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) GetPresentation(ctx context.Context, presentationID, userID uuid.UUID) (*models.Presentation, error) {
	row := d.db.QueryRowContext(ctx, `
		SELECT `+presentationColumns+`
		FROM presentations
		WHERE id = $1 AND user_id = $2
	`, presentationID, userID)

	p, err := scanPresentation(row)
	if err != nil {
		return nil, fmt.Errorf("failed to get presentation: %w", err)
	}
	return p, nil
}

func (d *DatabaseClient) ListPresentations(ctx context.Context, userID uuid.UUID) ([]models.Presentation, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT `+presentationColumns+`
		FROM presentations
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list presentations: %w", err)
	}
	defer rows.Close()

	var presentations []models.Presentation
	for rows.Next() {
		var p models.Presentation
		err := rows.Scan(
			&p.ID, &p.UserID, &p.ProjectID, &p.StructureID, &p.Status, &p.Slides,
			&p.GenerationProgress, &p.TotalExpectedSlides, &p.Customization, &p.BrandContext,
			&p.ErrorMessage, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan presentation: %w", err)
		}
		presentations = append(presentations, p)
	}

	return presentations, rows.Err()
}

// AppendSlide atomically appends one slide to the persisted list and
// ratchets the progress percentage. The whole operation is a single UPDATE:
// the containment guard makes duplicate or retried appends for the same
// slide number a no-op, and GREATEST keeps progress monotonic.
func (d *DatabaseClient) AppendSlide(ctx context.Context, presentationID uuid.UUID, slide models.Slide, progress int) error {
	slideJSON, err := json.Marshal(slide)
	if err != nil {
		return fmt.Errorf("failed to marshal slide: %w", err)
	}
	guard, err := json.Marshal([]map[string]int{{"slide_number": slide.SlideNumber}})
	if err != nil {
		return fmt.Errorf("failed to marshal slide guard: %w", err)
	}

	_, err = d.db.ExecContext(ctx, `
		UPDATE presentations
		SET slides = slides || jsonb_build_array($2::jsonb),
		    generation_progress = GREATEST(generation_progress, $3),
		    updated_at = NOW()
		WHERE id = $1
		  AND NOT (slides @> $4::jsonb)
	`, presentationID, slideJSON, progress, guard)
	if err != nil {
		return fmt.Errorf("failed to append slide %d: %w", slide.SlideNumber, err)
	}
	return nil
}

// CountSlides returns how many slides are currently persisted. Used by the
// stream controller to decide between draft and failed finalization.
func (d *DatabaseClient) CountSlides(ctx context.Context, presentationID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT jsonb_array_length(COALESCE(slides, '[]'::jsonb))
		FROM presentations
		WHERE id = $1
	`, presentationID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count slides: %w", err)
	}
	return count, nil
}

// UpdateStatus writes a status transition, enforcing the transition table
// in the WHERE clause so an illegal write (e.g. completed -> generating)
// cannot happen even under races.
func (d *DatabaseClient) UpdateStatus(ctx context.Context, presentationID uuid.UUID, to models.Status) error {
	allowed := models.AllowedPriorStatuses(to)
	prior := make([]string, len(allowed))
	for i, s := range allowed {
		prior[i] = string(s)
	}

	res, err := d.db.ExecContext(ctx, `
		UPDATE presentations
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = ANY($3)
	`, presentationID, to, pq.Array(prior))
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var current models.Status
		if err := d.db.QueryRowContext(ctx,
			`SELECT status FROM presentations WHERE id = $1`, presentationID,
		).Scan(&current); err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		return &models.ErrInvalidTransition{From: current, To: to}
	}
	return nil
}

// ResetForResume puts a draft (or failed) presentation back into the
// generating state and clears the prior error message.
func (d *DatabaseClient) ResetForResume(ctx context.Context, presentationID, userID uuid.UUID) error {
	res, err := d.db.ExecContext(ctx, `
		UPDATE presentations
		SET status = $3, error_message = NULL, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND status = ANY($4)
	`, presentationID, userID, models.StatusGenerating,
		pq.Array([]string{string(models.StatusDraft), string(models.StatusFailed)}))
	if err != nil {
		return fmt.Errorf("failed to reset presentation for resume: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("presentation is not resumable")
	}
	return nil
}

// FinalizeCompleted marks a run fully done: completed status, 100%
// progress, error cleared.
func (d *DatabaseClient) FinalizeCompleted(ctx context.Context, presentationID uuid.UUID) error {
	if err := d.UpdateStatus(ctx, presentationID, models.StatusCompleted); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		UPDATE presentations
		SET generation_progress = 100, error_message = NULL, updated_at = NOW()
		WHERE id = $1
	`, presentationID)
	if err != nil {
		return fmt.Errorf("failed to finalize presentation: %w", err)
	}
	return nil
}

// FinalizeInterrupted records a partial or failed run. Status must be
// draft (resumable, >= 1 slide) or failed (zero usable output).
func (d *DatabaseClient) FinalizeInterrupted(ctx context.Context, presentationID uuid.UUID, status models.Status, errorMsg string) error {
	if err := d.UpdateStatus(ctx, presentationID, status); err != nil {
		return err
	}
	_, err := d.db.ExecContext(ctx, `
		UPDATE presentations
		SET error_message = $2, updated_at = NOW()
		WHERE id = $1
	`, presentationID, errorMsg)
	if err != nil {
		return fmt.Errorf("failed to record interruption: %w", err)
	}
	return nil
}

// CountGeneratingForProject reports how many presentations of a project
// are mid-generation. Fresh jobs are quota-checked against this; resumes
// are not.
func (d *DatabaseClient) CountGeneratingForProject(ctx context.Context, projectID, userID uuid.UUID) (int, error) {
	var count int
	err := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM presentations
		WHERE project_id = $1 AND user_id = $2 AND status = $3
	`, projectID, userID, models.StatusGenerating).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count generating presentations: %w", err)
	}
	return count, nil
}

func (d *DatabaseClient) DeletePresentation(ctx context.Context, presentationID, userID uuid.UUID) error {
	_, err := d.db.ExecContext(ctx, `
		DELETE FROM presentations
		WHERE id = $1 AND user_id = $2
	`, presentationID, userID)
	return err
}

func (d *DatabaseClient) CreateStructure(ctx context.Context, userID, projectID uuid.UUID, title string, specs json.RawMessage) (*models.DeckStructure, error) {
	var s models.DeckStructure
	err := d.db.QueryRowContext(ctx, `
		INSERT INTO deck_structures (id, user_id, project_id, title, slide_specs)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, user_id, project_id, title, slide_specs, created_at, updated_at
	`, uuid.New(), userID, projectID, title, specs).Scan(
		&s.ID, &s.UserID, &s.ProjectID, &s.Title, &s.SlideSpecs, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create structure: %w", err)
	}
	return &s, nil
}

func (d *DatabaseClient) GetStructure(ctx context.Context, structureID, userID uuid.UUID) (*models.DeckStructure, error) {
	var s models.DeckStructure
	err := d.db.QueryRowContext(ctx, `
		SELECT id, user_id, project_id, title, slide_specs, created_at, updated_at
		FROM deck_structures
		WHERE id = $1 AND user_id = $2
	`, structureID, userID).Scan(
		&s.ID, &s.UserID, &s.ProjectID, &s.Title, &s.SlideSpecs, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get structure: %w", err)
	}
	return &s, nil
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
