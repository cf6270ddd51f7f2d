package state

import (
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/h2non/filetype"

	"github.com/clnbrd/clnbrd/internal/clipboard"
	"github.com/clnbrd/clnbrd/internal/utils"
)

// ErrHistoryNotFound is returned when no item matches a reference.
var ErrHistoryNotFound = errors.New("history item not found")

// previewRunes bounds the preview kept alongside each item.
const previewRunes = 120

// Item is one captured clipboard payload.
type Item struct {
	ID        string
	CreatedAt time.Time
	Source    string
	Preview   string
	Payload   clipboard.Payload
	ImageType string
	Size      int64
	Hash      string
}

// PayloadHash identifies a payload by its formats and bytes.
func PayloadHash(p clipboard.Payload) string {
	h := sha256.New()
	for _, r := range p {
		h.Write([]byte(r.Format))
		h.Write([]byte{0})
		h.Write(r.Data)
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)[:16])
}

// Preview returns a one-line summary of p.
func Preview(p clipboard.Payload) string {
	if text, _, ok := clipboard.ExtractText(p); ok {
		fields := strings.FieldsFunc(text, unicode.IsSpace)
		line := strings.Join(fields, " ")
		if r := []rune(line); len(r) > previewRunes {
			line = string(r[:previewRunes]) + "…"
		}
		return line
	}
	if img, ok := p.Get(clipboard.FormatImage); ok {
		return fmt.Sprintf("[%s image, %s]", imageType(img), utils.ConvertBytesToHumanReadable(int64(len(img))))
	}
	return ""
}

func imageType(data []byte) string {
	if !filetype.IsImage(data) {
		return "unknown"
	}
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return "unknown"
	}
	return kind.Extension
}

// History stores captured payloads, newest first, bounded by MaxItems.
type History struct {
	// MaxItems caps the stored items; zero keeps everything.
	MaxItems int
	now      func() time.Time
}

// NewHistory returns a history bounded to maxItems entries.
func NewHistory(maxItems int) *History {
	return &History{MaxItems: maxItems, now: time.Now}
}

// Record stores p unless it repeats the newest item.
func (h *History) Record(source string, p clipboard.Payload) error {
	_, _, err := h.Add(source, p)
	return err
}

// Add stores p and reports whether a new item was created. A payload equal
// to the newest item is not stored twice.
func (h *History) Add(source string, p clipboard.Payload) (Item, bool, error) {
	if len(p) == 0 || p.Size() == 0 {
		return Item{}, false, clipboard.ErrEmpty
	}

	item := Item{
		ID:        uuid.New().String(),
		CreatedAt: h.now(),
		Source:    source,
		Preview:   Preview(p),
		Payload:   p.Clone(),
		Size:      p.Size(),
		Hash:      PayloadHash(p),
	}
	if img, ok := p.Get(clipboard.FormatImage); ok && len(img) > 0 {
		item.ImageType = imageType(img)
	}

	created := false
	err := withTx(func(tx *sql.Tx) error {
		var newest string
		err := tx.QueryRow("SELECT hash FROM history ORDER BY created_at DESC, rowid DESC LIMIT 1").Scan(&newest)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if newest == item.Hash {
			return nil
		}

		plain, _ := p.Get(clipboard.FormatPlain)
		rtf, _ := p.Get(clipboard.FormatRTF)
		html, _ := p.Get(clipboard.FormatHTML)
		img, _ := p.Get(clipboard.FormatImage)
		_, err = tx.Exec(`
			INSERT INTO history (id, created_at, source, preview, plain, rtf, html, image, image_type, size, hash)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, item.ID, item.CreatedAt.UnixNano(), item.Source, item.Preview,
			plain, rtf, html, img, item.ImageType, item.Size, item.Hash)
		if err != nil {
			return fmt.Errorf("failed to insert history item: %w", err)
		}
		created = true

		if h.MaxItems > 0 {
			return pruneTx(tx, h.MaxItems)
		}
		return nil
	})
	if err != nil {
		return Item{}, false, err
	}
	if created {
		utils.Debug("History: recorded %s (%s, %d bytes)", item.ID, source, item.Size)
	}
	return item, created, nil
}

const itemColumns = "id, created_at, source, preview, plain, rtf, html, image, image_type, size, hash"

func scanItem(row interface{ Scan(...any) error }) (Item, error) {
	var (
		it                     Item
		created                int64
		plain, rtf, html, img  []byte
		source, preview, itype sql.NullString
		hash                   sql.NullString
	)
	if err := row.Scan(&it.ID, &created, &source, &preview, &plain, &rtf, &html, &img, &itype, &it.Size, &hash); err != nil {
		return Item{}, err
	}
	it.CreatedAt = time.Unix(0, created)
	it.Source, it.Preview, it.ImageType, it.Hash = source.String, preview.String, itype.String, hash.String
	for _, rep := range []clipboard.Representation{
		{Format: clipboard.FormatPlain, Data: plain},
		{Format: clipboard.FormatRTF, Data: rtf},
		{Format: clipboard.FormatHTML, Data: html},
		{Format: clipboard.FormatImage, Data: img},
	} {
		if rep.Data != nil {
			it.Payload = append(it.Payload, rep)
		}
	}
	return it, nil
}

// List returns up to limit items, newest first. limit <= 0 returns all.
func (h *History) List(limit int) ([]Item, error) {
	d := getDBHelper()
	if d == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := d.Query("SELECT "+itemColumns+" FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var items []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// Get returns the item whose id equals or uniquely starts with ref.
func (h *History) Get(ref string) (Item, error) {
	d := getDBHelper()
	if d == nil {
		return Item{}, fmt.Errorf("database not initialized")
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return Item{}, ErrHistoryNotFound
	}
	rows, err := d.Query("SELECT "+itemColumns+" FROM history WHERE id = ? OR id LIKE ? LIMIT 2", ref, ref+"%")
	if err != nil {
		return Item{}, err
	}
	defer rows.Close()

	var found []Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return Item{}, err
		}
		if it.ID == ref {
			return it, nil
		}
		found = append(found, it)
	}
	if err := rows.Err(); err != nil {
		return Item{}, err
	}
	switch len(found) {
	case 1:
		return found[0], nil
	case 0:
		return Item{}, ErrHistoryNotFound
	default:
		return Item{}, fmt.Errorf("%w: %q is ambiguous", ErrHistoryNotFound, ref)
	}
}

// Delete removes the item matching ref.
func (h *History) Delete(ref string) error {
	it, err := h.Get(ref)
	if err != nil {
		return err
	}
	return withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM history WHERE id = ?", it.ID)
		return err
	})
}

// Clear removes every item and returns how many were removed.
func (h *History) Clear() (int64, error) {
	var n int64
	err := withTx(func(tx *sql.Tx) error {
		res, err := tx.Exec("DELETE FROM history")
		if err != nil {
			return err
		}
		n, err = res.RowsAffected()
		return err
	})
	return n, err
}

// Count returns the number of stored items.
func (h *History) Count() (int, error) {
	d := getDBHelper()
	if d == nil {
		return 0, fmt.Errorf("database not initialized")
	}
	var n int
	err := d.QueryRow("SELECT COUNT(*) FROM history").Scan(&n)
	return n, err
}

// Prune keeps the newest keep items.
func (h *History) Prune(keep int) error {
	return withTx(func(tx *sql.Tx) error {
		return pruneTx(tx, keep)
	})
}

func pruneTx(tx *sql.Tx, keep int) error {
	_, err := tx.Exec(`
		DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY created_at DESC, rowid DESC LIMIT ?
		)
	`, keep)
	if err != nil {
		return fmt.Errorf("failed to prune history: %w", err)
	}
	return nil
}
