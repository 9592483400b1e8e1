// Package blobkey builds object storage keys for uploaded documents.
package blobkey

import (
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// OwnerPrefix is the key prefix shared by every object owned by ownerID.
func OwnerPrefix(ownerID string) string {
	return "user_" + ownerID + "/"
}

// New returns user_<owner>/<type>/<YYYYMMDD_HHMMSS>_<random8><ext>.
// ext keeps its leading dot and is lower-cased.
func New(ownerID, docType, ext string, now time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	name := now.UTC().Format("20060102_150405") + "_" + suffix + strings.ToLower(ext)
	return path.Join(OwnerPrefix(ownerID)+docType, name)
}
