package partition

import "hash/fnv"

// Count is the fixed number of logical partitions series are hashed into.
const Count = 256

// For returns the partition of a series. The same id always maps to the
// same partition (FNV-32a).
func For(seriesID string) int {
	h := fnv.New32a()
	h.Write([]byte(seriesID))
	return int(h.Sum32() % Count)
}

// Owner returns which of n workers handles seriesID. Assignment goes through
// the partition, so a series stays with one worker for as long as n does
// not change.
func Owner(seriesID string, n int) int {
	if n <= 1 {
		return 0
	}
	return For(seriesID) % n
}
