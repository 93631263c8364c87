package session

import (
	"context"
	"encoding/json"
	"fmt"
)

// Keys written by earlier releases, one string per field plus two JSON blobs.
const (
	legacyUserID       = "userId"
	legacyUserName     = "userName"
	legacyUserEmail    = "userEmail"
	legacyAccessToken  = "accessToken"
	legacyUser         = "user"
	legacySelectedMode = "selectedMode"
	legacyClassLevel   = "classLevel"
	legacyModeSelect   = "modeSelection"
)

var legacyKeys = []string{
	legacyUserID, legacyUserName, legacyUserEmail, legacyAccessToken,
	legacyUser, legacySelectedMode, legacyClassLevel, legacyModeSelect,
}

type legacyUserBlob struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name"`
	Email    string `json:"email"`
}

type legacyModeBlob struct {
	Mode       string `json:"mode"`
	ClassLevel string `json:"classLevel"`
}

// migrateLegacy folds legacy keys into sess. Discrete keys win over the JSON
// blobs, and fields already present in sess win over both.
func migrateLegacy(ctx context.Context, kv KV, sess Session) (Session, bool, error) {
	vals := make(map[string]string, len(legacyKeys))
	for _, k := range legacyKeys {
		v, ok, err := kv.Get(ctx, k)
		if err != nil {
			return sess, false, fmt.Errorf("read legacy key %q: %w", k, err)
		}
		if ok {
			vals[k] = v
		}
	}
	if len(vals) == 0 {
		return sess, false, nil
	}

	var legacy Session
	if raw, ok := vals[legacyUser]; ok {
		var u legacyUserBlob
		if json.Unmarshal([]byte(raw), &u) == nil {
			legacy.UserID = u.ID
			legacy.UserName = firstNonEmpty(u.Username, u.Name)
			legacy.Email = u.Email
		}
	}
	if raw, ok := vals[legacyModeSelect]; ok {
		var m legacyModeBlob
		if json.Unmarshal([]byte(raw), &m) == nil {
			legacy.Mode = m.Mode
			legacy.ClassLevel = m.ClassLevel
		}
	}
	legacy.UserID = firstNonEmpty(vals[legacyUserID], legacy.UserID)
	legacy.UserName = firstNonEmpty(vals[legacyUserName], legacy.UserName)
	legacy.Email = firstNonEmpty(vals[legacyUserEmail], legacy.Email)
	legacy.AccessToken = vals[legacyAccessToken]
	legacy.Mode = firstNonEmpty(vals[legacySelectedMode], legacy.Mode)
	legacy.ClassLevel = firstNonEmpty(vals[legacyClassLevel], legacy.ClassLevel)

	if sess.UserID != "" && legacy.UserID != "" && sess.UserID != legacy.UserID {
		// Stale keys from another account; drop them without merging.
		return sess, true, nil
	}

	out := sess
	out.UserID = firstNonEmpty(sess.UserID, legacy.UserID)
	out.UserName = firstNonEmpty(sess.UserName, legacy.UserName)
	out.Email = firstNonEmpty(sess.Email, legacy.Email)
	out.AccessToken = firstNonEmpty(sess.AccessToken, legacy.AccessToken)
	out.Mode = firstNonEmpty(sess.Mode, legacy.Mode)
	out.ClassLevel = firstNonEmpty(sess.ClassLevel, legacy.ClassLevel)
	return out, true, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
