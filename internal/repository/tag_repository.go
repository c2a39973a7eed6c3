package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/vehicle-tag-registry/internal/model"
)

// tagColumns is the column list used by every tag SELECT so scanTag can
// stay in one place.
const tagColumns = `id, code, batch_id, owner_id, status, nickname, plate_number,
	vehicle_type, vehicle_color, vehicle_make, vehicle_model,
	emergency_name, emergency_phone,
	allow_masked_call, allow_whatsapp, allow_sms, show_emergency_contact,
	created_at, updated_at`

// flagColumns maps the closed set of togglable privacy flags to their
// columns. Requests naming anything else are rejected with
// ErrUnknownFlag; client input never chooses column names directly.
var flagColumns = map[string]string{
	"allow_masked_call":      "allow_masked_call",
	"allow_whatsapp":         "allow_whatsapp",
	"allow_sms":              "allow_sms",
	"show_emergency_contact": "show_emergency_contact",
}

// TagRepo encapsulates database operations for tags and scan events.
type TagRepo struct {
	db *sql.DB
}

// NewTagRepo returns a TagRepo bound to the provided database.
func NewTagRepo(db *sql.DB) *TagRepo { return &TagRepo{db: db} }

// DB exposes the underlying handle for callers that need transactions.
func (r *TagRepo) DB() *sql.DB { return r.db }

func scanTag(row interface{ Scan(...any) error }) (model.Tag, error) {
	var (
		t       model.Tag
		batchID sql.NullString
		ownerID sql.NullInt64
	)
	err := row.Scan(
		&t.ID, &t.Code, &batchID, &ownerID, &t.Status, &t.Nickname, &t.PlateNumber,
		&t.VehicleType, &t.VehicleColor, &t.VehicleMake, &t.VehicleModel,
		&t.EmergencyContact.Name, &t.EmergencyContact.Phone,
		&t.Privacy.AllowMaskedCall, &t.Privacy.AllowWhatsapp,
		&t.Privacy.AllowSMS, &t.Privacy.ShowEmergencyContact,
		&t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return model.Tag{}, err
	}
	if batchID.Valid {
		t.BatchID = batchID.String
	}
	if ownerID.Valid {
		v := uint64(ownerID.Int64)
		t.OwnerID = &v
	}
	return t, nil
}

// GetByCode fetches a tag by its printed code.
func (r *TagRepo) GetByCode(ctx context.Context, code string) (model.Tag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE code = ? LIMIT 1`, code)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, ErrTagNotFound
	}
	return t, err
}

// GetByID fetches a tag by its internal id.
func (r *TagRepo) GetByID(ctx context.Context, id uint64) (model.Tag, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE id = ? LIMIT 1`, id)
	t, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Tag{}, ErrTagNotFound
	}
	return t, err
}

// ListByOwner returns all tags bound to the given owner, newest first.
func (r *TagRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]model.Tag, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+tagColumns+` FROM tags WHERE owner_id = ? ORDER BY id DESC`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var tags []model.Tag
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, t)
	}
	return tags, rows.Err()
}

// CreateBatch inserts blank tag rows for every code in one statement.
// All tags share the batch id so the printable sheet can be re-rendered
// later. The uniqueness constraint on tags.code is the final authority
// on collisions: a duplicate anywhere in the batch surfaces as
// ErrDuplicateCode and the caller regenerates.
func (r *TagRepo) CreateBatch(ctx context.Context, batchID string, codes []string) error {
	if len(codes) == 0 {
		return nil
	}
	flags := model.DefaultPrivacyFlags()
	query := `INSERT INTO tags (code, batch_id, status, allow_masked_call, allow_whatsapp, allow_sms, show_emergency_contact) VALUES `
	args := make([]any, 0, len(codes)*7)
	for i, code := range codes {
		if i > 0 {
			query += ","
		}
		query += "(?, ?, ?, ?, ?, ?, ?)"
		args = append(args, code, batchID, model.TagStatusCreated,
			flags.AllowMaskedCall, flags.AllowWhatsapp, flags.AllowSMS, flags.ShowEmergencyContact)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicateCode
		}
		return err
	}
	return nil
}

// ListByBatch returns the codes issued under a batch in insertion order.
func (r *TagRepo) ListByBatch(ctx context.Context, batchID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT code FROM tags WHERE batch_id = ? ORDER BY id`, batchID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var codes []string
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	return codes, rows.Err()
}

// Claim binds a blank tag to an owner and activates it. The
// check-and-set is a single conditional UPDATE so that two concurrent
// claims on the same code cannot both succeed; a read-then-write
// version would leave a race window. Zero rows affected means the tag
// either does not exist or is already bound, distinguished by a
// follow-up read.
func (r *TagRepo) Claim(ctx context.Context, code string, ownerID uint64, nickname, plateNumber, vehicleType string) (model.Tag, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tags
		 SET owner_id = ?, status = ?, nickname = ?, plate_number = ?, vehicle_type = ?
		 WHERE code = ? AND status = ? AND owner_id IS NULL`,
		ownerID, model.TagStatusActive, nickname, plateNumber, vehicleType,
		code, model.TagStatusCreated)
	if err != nil {
		return model.Tag{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Tag{}, err
	}
	if n == 0 {
		if _, err := r.GetByCode(ctx, code); err != nil {
			return model.Tag{}, err // ErrTagNotFound or a db failure
		}
		return model.Tag{}, ErrAlreadyClaimed
	}
	return r.GetByCode(ctx, code)
}

// patchAssignments builds the SET fragment for the fields present in a
// patch. Only the fixed set of owner-editable columns can appear. The
// emergency phone column is deliberately absent: it is written solely
// by CommitVerifiedPatch.
func patchAssignments(patch model.TagPatch) (string, []any) {
	var (
		set  []string
		args []any
	)
	add := func(col string, v *string) {
		if v != nil {
			set = append(set, col+" = ?")
			args = append(args, *v)
		}
	}
	add("nickname", patch.Nickname)
	add("plate_number", patch.PlateNumber)
	add("vehicle_type", patch.VehicleType)
	add("vehicle_color", patch.VehicleColor)
	add("vehicle_make", patch.VehicleMake)
	add("vehicle_model", patch.VehicleModel)
	add("emergency_name", patch.EmergencyContactName)
	return strings.Join(set, ", "), args
}

// UpdateFields applies a partial update of non-sensitive fields. The
// caller (the lifecycle service) has already verified ownership and
// stripped any phone change out of the patch.
func (r *TagRepo) UpdateFields(ctx context.Context, id uint64, patch model.TagPatch) (model.Tag, error) {
	set, args := patchAssignments(patch)
	if set != "" {
		args = append(args, id)
		if _, err := r.db.ExecContext(ctx,
			`UPDATE tags SET `+set+` WHERE id = ?`, args...); err != nil {
			return model.Tag{}, err
		}
	}
	return r.GetByID(ctx, id)
}

// CommitVerifiedPatch persists the pending multi-field edit together
// with the verified phone number as one UPDATE. This is the only code
// path that writes emergency_phone.
func (r *TagRepo) CommitVerifiedPatch(ctx context.Context, id uint64, patch model.TagPatch, verifiedPhone string) (model.Tag, error) {
	set, args := patchAssignments(patch)
	if set != "" {
		set += ", "
	}
	set += "emergency_phone = ?"
	args = append(args, verifiedPhone, id)
	if _, err := r.db.ExecContext(ctx,
		`UPDATE tags SET `+set+` WHERE id = ?`, args...); err != nil {
		return model.Tag{}, err
	}
	return r.GetByID(ctx, id)
}

// ToggleFlag flips one privacy flag. Ownership is enforced inside the
// UPDATE itself; when no row matches, a follow-up read decides between
// not-found and forbidden.
func (r *TagRepo) ToggleFlag(ctx context.Context, id, ownerID uint64, flag string) (model.Tag, error) {
	col, ok := flagColumns[flag]
	if !ok {
		return model.Tag{}, ErrUnknownFlag
	}
	res, err := r.db.ExecContext(ctx,
		fmt.Sprintf(`UPDATE tags SET %s = NOT %s WHERE id = ? AND owner_id = ?`, col, col),
		id, ownerID)
	if err != nil {
		return model.Tag{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Tag{}, err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return model.Tag{}, err
		}
		return model.Tag{}, ErrForbidden
	}
	return r.GetByID(ctx, id)
}

// Disable deactivates an active tag owned by the caller.
func (r *TagRepo) Disable(ctx context.Context, id, ownerID uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tags SET status = ? WHERE id = ? AND owner_id = ? AND status = ?`,
		model.TagStatusDisabled, id, ownerID, model.TagStatusActive)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrForbidden
	}
	return nil
}

// Reactivate returns a disabled tag to active. Admin only; the route
// layer enforces the role.
func (r *TagRepo) Reactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE tags SET status = ? WHERE id = ? AND status = ?`,
		model.TagStatusActive, id, model.TagStatusDisabled)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrConflict
	}
	return nil
}

// AppendScan records one scan event. Events are rows in tag_scans, so
// concurrent scans are additive by construction; nothing ever rewrites
// the collection.
func (r *TagRepo) AppendScan(ctx context.Context, tagID uint64, at time.Time, location string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tag_scans (tag_id, scanned_at, location) VALUES (?, ?, ?)`,
		tagID, at.UTC(), location)
	return err
}

// ScansByTag returns the most recent scan events (capped at limit) plus
// the total count. The table itself keeps everything; only reads are
// capped.
func (r *TagRepo) ScansByTag(ctx context.Context, tagID uint64, limit int) ([]model.ScanEvent, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tag_scans WHERE tag_id = ?`, tagID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tag_id, scanned_at, location FROM tag_scans
		 WHERE tag_id = ? ORDER BY id DESC LIMIT ?`, tagID, limit)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	var events []model.ScanEvent
	for rows.Next() {
		var ev model.ScanEvent
		if err := rows.Scan(&ev.ID, &ev.TagID, &ev.ScannedAt, &ev.Location); err != nil {
			return nil, 0, err
		}
		events = append(events, ev)
	}
	return events, total, rows.Err()
}

// isDuplicateKey detects MySQL error 1062 (duplicate entry).
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
