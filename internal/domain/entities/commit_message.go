package entities

import (
	"fmt"
	"strings"
)

// CommitMessage builds "Update A, B to 1, 2, respectively" from the used
// infos. A single info drops the trailing "respectively".
func CommitMessage(infos []DependencyInfo) string {
	names := make([]string, 0, len(infos))
	versions := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.SimpleName())
		versions = append(versions, info.SimpleVersion())
	}

	message := fmt.Sprintf("Update %s to %s", strings.Join(names, ", "), strings.Join(versions, ", "))
	if len(infos) > 1 {
		message += ", respectively"
	}
	return message
}
