package data

import (
	"os"
	"strings"
	"sync"

	"gorm.io/gorm"

	"github.com/quorumlabs/peerpanel/src/api/types"
)

var (
	settingsCache map[string]string
	settingsMu    sync.RWMutex
)

// LoadSettings loads all settings from database into cache.
func LoadSettings(db *gorm.DB) error {
	var settings []types.Setting
	if err := db.Find(&settings).Error; err != nil {
		return err
	}

	settingsMu.Lock()
	defer settingsMu.Unlock()

	settingsCache = make(map[string]string)
	for _, s := range settings {
		settingsCache[s.Name] = s.Value
	}

	return nil
}

// GetSetting retrieves a setting value by name, falling back to the
// like-named environment variable when the table has no row.
func GetSetting(name string) string {
	settingsMu.RLock()
	v := settingsCache[name]
	settingsMu.RUnlock()
	if v != "" {
		return v
	}
	return os.Getenv(strings.ToUpper(name))
}

// RefreshSettings reloads settings from database.
func RefreshSettings(db *gorm.DB) error {
	return LoadSettings(db)
}
