package state

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/clnbrd/clnbrd/internal/rules"
)

// Preference keys beyond the per-flag keys in rules.FlagKeys.
const (
	KeyEmdashReplacement = "ReplaceEmdashWith"
	KeyCustomRules       = "CustomRules"
	KeyRuleConfigs       = "CleaningRuleConfigurations"
	KeyProfiles          = "CleaningProfiles"
	KeyActiveProfile     = "ActiveProfileId"
)

// GetPref returns the raw value stored under key.
func GetPref(key string) ([]byte, bool, error) {
	d := getDBHelper()
	if d == nil {
		return nil, false, fmt.Errorf("database not initialized")
	}
	var value []byte
	err := d.QueryRow("SELECT value FROM preferences WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

// SetPref stores value under key.
func SetPref(key string, value []byte) error {
	return withTx(func(tx *sql.Tx) error {
		return setPrefTx(tx, key, value)
	})
}

// DeletePref removes key.
func DeletePref(key string) error {
	return withTx(func(tx *sql.Tx) error {
		_, err := tx.Exec("DELETE FROM preferences WHERE key = ?", key)
		return err
	})
}

func setPrefTx(tx *sql.Tx, key string, value []byte) error {
	_, err := tx.Exec(`
		INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value=excluded.value, updated_at=excluded.updated_at
	`, key, value, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

// loadPrefs returns every stored preference as raw JSON.
func loadPrefs() (map[string]json.RawMessage, error) {
	d := getDBHelper()
	if d == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	rows, err := d.Query("SELECT key, value FROM preferences")
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		if json.Valid(value) {
			out[key] = value
		}
	}
	return out, rows.Err()
}

// Prefs is the preference store seen by the rules package.
type Prefs struct{}

// LoadRules rebuilds the rule set from the per-flag keys and the stage
// configurations. Missing or malformed entries keep their defaults.
func (Prefs) LoadRules() (rules.RuleSet, map[rules.StageID]rules.RuleConfig, error) {
	all, err := loadPrefs()
	if err != nil {
		return rules.RuleSet{}, nil, err
	}

	ruleKeys := make(map[string]json.RawMessage, len(rules.FlagKeys)+2)
	for _, key := range rules.FlagKeys {
		if v, ok := all[key]; ok {
			ruleKeys[key] = v
		}
	}
	for _, key := range []string{KeyEmdashReplacement, KeyCustomRules} {
		if v, ok := all[key]; ok {
			ruleKeys[key] = v
		}
	}

	rs := rules.DefaultRuleSet()
	if len(ruleKeys) > 0 {
		data, _ := json.Marshal(ruleKeys)
		if err := json.Unmarshal(data, &rs); err != nil {
			// One bad key poisons the document; fall back per key.
			rs = loadRulesPerKey(ruleKeys)
		}
	}

	cfgs := rules.DefaultConfigs()
	if raw, ok := all[KeyRuleConfigs]; ok {
		var stored map[string]json.RawMessage
		if err := json.Unmarshal(raw, &stored); err == nil {
			for k, v := range stored {
				id, ok := rules.ParseStageID(k)
				if !ok {
					continue
				}
				var cfg rules.RuleConfig
				if err := json.Unmarshal(v, &cfg); err != nil {
					continue
				}
				cfg.RuleID = id
				cfgs[id] = cfg
			}
		}
	}
	return rs, cfgs, nil
}

func loadRulesPerKey(ruleKeys map[string]json.RawMessage) rules.RuleSet {
	good := make(map[string]json.RawMessage, len(ruleKeys))
	for key, v := range ruleKeys {
		wrapped, _ := json.Marshal(map[string]json.RawMessage{key: v})
		var rs rules.RuleSet
		if json.Unmarshal(wrapped, &rs) == nil {
			good[key] = v
		}
	}
	rs := rules.DefaultRuleSet()
	data, _ := json.Marshal(good)
	_ = json.Unmarshal(data, &rs)
	return rs
}

// SaveRules writes every rule key and the stage configurations in one
// transaction.
func (Prefs) SaveRules(rs rules.RuleSet, cfgs map[rules.StageID]rules.RuleConfig) error {
	data, err := json.Marshal(rs)
	if err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	stored := make(map[string]rules.RuleConfig, len(cfgs))
	for id, cfg := range cfgs {
		stored[string(id)] = cfg
	}
	cfgData, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	return withTx(func(tx *sql.Tx) error {
		for key, v := range keys {
			if err := setPrefTx(tx, key, v); err != nil {
				return err
			}
		}
		return setPrefTx(tx, KeyRuleConfigs, cfgData)
	})
}

// LoadProfiles returns the stored profiles and the active profile id.
func (Prefs) LoadProfiles() ([]rules.Profile, string, error) {
	raw, ok, err := GetPref(KeyProfiles)
	if err != nil || !ok {
		return nil, "", err
	}
	var list []rules.Profile
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, "", fmt.Errorf("failed to decode profiles: %w", err)
	}

	var active string
	if v, ok, err := GetPref(KeyActiveProfile); err != nil {
		return nil, "", err
	} else if ok {
		_ = json.Unmarshal(v, &active)
	}
	return list, active, nil
}

// SaveProfiles stores the profile list and the active id together.
func (Prefs) SaveProfiles(list []rules.Profile, activeID string) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	active, _ := json.Marshal(activeID)
	return withTx(func(tx *sql.Tx) error {
		if err := setPrefTx(tx, KeyProfiles, data); err != nil {
			return err
		}
		return setPrefTx(tx, KeyActiveProfile, active)
	})
}
