package postgres

import "github.com/google/uuid"

// isUUID guards uuid columns: a malformed id from a request can never match a
// row, and sending it to Postgres would only produce a cast error.
func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

func filterUUIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if isUUID(id) {
			out = append(out, id)
		}
	}
	return out
}
