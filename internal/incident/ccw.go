package incident

type chargeKey struct {
	crimeID string
	isCCW   bool
}

// CCWOnly returns the rows of incidents whose only charge is a CCW charge.
//
// Rows repeating a (CrimeID, IsCCW) pair are dropped first (keeping the
// first), so a person charged with the same CCW count twice in one arrest
// still qualifies. Input order is preserved.
func CCWOnly(records []Record) []Record {
	seen := make(map[chargeKey]struct{}, len(records))
	deduped := make([]Record, 0, len(records))
	for _, r := range records {
		k := chargeKey{crimeID: r.CrimeID, isCCW: r.IsCCW}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		deduped = append(deduped, r)
	}

	charges := make(map[string]int, len(deduped))
	for _, r := range deduped {
		charges[r.CrimeID]++
	}

	var out []Record
	for _, r := range deduped {
		if charges[r.CrimeID] == 1 && r.IsCCW {
			out = append(out, r)
		}
	}
	return out
}
