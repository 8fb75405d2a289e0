package reports

import (
	"fmt"
	"path"
	"time"

	"glucowizard-backend/internal/shared/util"
)

const documentKeyTimeLayout = "20060102T150405.000000000Z"

// DocumentKey builds the object-store key for a report document.
func DocumentKey(ownerID string, at time.Time, fileName string) (string, error) {
	name, err := util.SanitizeFileName(path.Base(fileName))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("reports/%s/%s_%s", ownerID, at.UTC().Format(documentKeyTimeLayout), name), nil
}
