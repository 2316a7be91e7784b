package roster

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"log"
	"strings"
)

// ImportResult summarizes a bulk CSV import.
type ImportResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

// ImportCSV reads `name,email,password,role,department` rows (header row
// skipped) and provisions an account per row. A malformed row counts as
// failed and is never partially applied; the import continues.
func (s *Service) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // rows are validated individually
	reader.TrimLeadingSpace = true

	var res ImportResult
	first := true
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			res.Failed++
			continue
		}
		if first {
			first = false
			continue // header
		}
		if len(record) < 4 {
			res.Failed++
			continue
		}
		name := strings.TrimSpace(record[0])
		email := strings.TrimSpace(record[1])
		password := strings.TrimSpace(record[2])
		role := Role(strings.TrimSpace(strings.ToLower(record[3])))
		department := ""
		if len(record) > 4 {
			department = strings.TrimSpace(record[4])
		}

		if name == "" || email == "" || password == "" || !role.Valid() {
			res.Failed++
			continue
		}

		if _, err := s.Create(ctx, UsernameFromName(name), name, email, password, role, department); err != nil {
			log.Printf("roster: import row for %s failed: %v", email, err)
			res.Failed++
			continue
		}
		res.Success++
	}
	return res, nil
}
