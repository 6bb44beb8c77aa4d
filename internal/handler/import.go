package handler

import (
	"crypto/rand"
	"encoding/csv"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"habit-goal/internal/logger"
	"habit-goal/internal/model"
	"habit-goal/internal/progress"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ImportHandler brings completion history from another tracker in via a CSV
// upload. Preview parses and matches without writing anything; Confirm
// replays a cached preview into the database.
type ImportHandler struct {
	db    *gorm.DB
	cache sync.Map // token -> *previewCache
}

type previewCache struct {
	userID    int
	entries   []importEntry
	createdAt time.Time
}

type importEntry struct {
	Date    string `json:"date"`
	Habit   string `json:"habit"`
	Quality int    `json:"quality"`
	HabitID int    `json:"habit_id"` // 0 when no habit matched
}

func NewImportHandler(db *gorm.DB) *ImportHandler {
	h := &ImportHandler{db: db}
	// Previews not confirmed within 10 minutes are discarded.
	go func() {
		for range time.Tick(5 * time.Minute) {
			h.cache.Range(func(k, v any) bool {
				if time.Since(v.(*previewCache).createdAt) > 10*time.Minute {
					h.cache.Delete(k)
				}
				return true
			})
		}
	}()
	return h
}

// Preview handles POST /api/import/preview. The CSV columns are
// date,habit[,quality]; a header row is skipped when present.
func (h *ImportHandler) Preview(c *gin.Context) {
	userID := c.GetInt("user_id")
	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file required"})
		return
	}
	logger.Info("import preview: start", "uid", userID, "file", file.Filename, "size", file.Size)

	f, err := file.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "open upload failed"})
		return
	}
	defer f.Close()

	entries, badRows, err := parseCompletionCSV(f)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var habits []model.Habit
	if err := h.db.WithContext(c.Request.Context()).Where("user_id = ?", userID).Find(&habits).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query habits failed"})
		return
	}

	unmatchedSet := map[string]bool{}
	for i := range entries {
		entries[i].HabitID = matchHabit(entries[i].Habit, habits)
		if entries[i].HabitID == 0 {
			unmatchedSet[entries[i].Habit] = true
		}
	}
	var unmatched []string
	for name := range unmatchedSet {
		unmatched = append(unmatched, name)
	}

	token := genToken()
	h.cache.Store(token, &previewCache{userID: userID, entries: entries, createdAt: time.Now()})

	logger.Info("import preview: done", "uid", userID, "entries", len(entries), "unmatched", len(unmatched), "bad_rows", badRows)
	c.JSON(http.StatusOK, gin.H{
		"token":            token,
		"entries":          entries,
		"unmatched_habits": unmatched,
		"bad_rows":         badRows,
	})
}

// Confirm handles POST /api/import/confirm.
func (h *ImportHandler) Confirm(c *gin.Context) {
	var req struct {
		Token string `json:"token"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Token == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
		return
	}

	val, ok := h.cache.LoadAndDelete(req.Token)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "preview expired, upload again"})
		return
	}
	cached := val.(*previewCache)
	if cached.userID != c.GetInt("user_id") {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	logger.Info("import confirm: start", "uid", cached.userID, "entries", len(cached.entries))

	ctx := c.Request.Context()
	imported, merged, skipped := 0, 0, 0
	for _, e := range cached.entries {
		if e.HabitID == 0 {
			skipped++
			continue
		}
		var existing model.HabitCompletion
		err := h.db.WithContext(ctx).
			Where("habit_id = ? AND completed_date = ?", e.HabitID, e.Date).
			First(&existing).Error
		if err == nil {
			if e.Quality != 0 && e.Quality != existing.Quality {
				h.db.WithContext(ctx).Model(&existing).Update("quality", e.Quality)
			}
			merged++
			continue
		}
		row := model.HabitCompletion{HabitID: e.HabitID, CompletedDate: e.Date, Quality: e.Quality}
		if err := h.db.WithContext(ctx).Create(&row).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("insert completion: %v", err)})
			return
		}
		imported++
	}

	logger.Info("import confirm: done", "imported", imported, "merged", merged, "skipped", skipped)
	c.JSON(http.StatusOK, gin.H{
		"imported": imported,
		"merged":   merged,
		"skipped":  skipped,
		"total":    len(cached.entries),
	})
}

// parseCompletionCSV reads date,habit[,quality] rows, normalizing dates and
// counting rows it cannot use rather than aborting the whole file.
func parseCompletionCSV(r io.Reader) ([]importEntry, int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	var entries []importEntry
	badRows := 0
	first := true
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if len(rec) > 0 && strings.EqualFold(strings.TrimSpace(rec[0]), "date") {
				continue
			}
		}
		if len(rec) < 2 {
			badRows++
			continue
		}
		day, err := progress.NormalizeDay(strings.TrimSpace(rec[0]))
		if err != nil {
			badRows++
			continue
		}
		quality := 0
		if len(rec) > 2 {
			if q, err := strconv.Atoi(strings.TrimSpace(rec[2])); err == nil && q >= 1 && q <= 5 {
				quality = q
			}
		}
		entries = append(entries, importEntry{Date: day, Habit: strings.TrimSpace(rec[1]), Quality: quality})
	}
	return entries, badRows, nil
}

func matchHabit(name string, habits []model.Habit) int {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0
	}
	for _, h := range habits {
		if strings.EqualFold(h.Name, name) {
			return h.ID
		}
	}
	for _, h := range habits {
		if strings.Contains(strings.ToLower(h.Name), strings.ToLower(name)) ||
			strings.Contains(strings.ToLower(name), strings.ToLower(h.Name)) {
			return h.ID
		}
	}
	return 0
}

func genToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}
