package sourcetext

import "github.com/calyptra/autopress/internal/domain"

// PartitionDocuments splits a source set into groupCount groups by
// contiguous slicing of floor(len/groupCount) documents per group,
// with the remainder appended to the last group. When the set is
// smaller than the group count, empty groups are backfilled by cyclic
// reuse of earlier sources so no generation task ever receives zero
// sources. Every source appears in at least one group.
func PartitionDocuments(
	docs []domain.SourceDocument,
	groupCount int,
) [][]domain.SourceDocument {
	if groupCount <= 0 || len(docs) == 0 {
		return nil
	}

	size := len(docs) / groupCount
	groups := make([][]domain.SourceDocument, groupCount)

	for i := 0; i < groupCount; i++ {
		if size > 0 {
			start := i * size
			end := start + size
			if i == groupCount-1 {
				end = len(docs)
			}
			groups[i] = append(groups[i], docs[start:end]...)
		}
		if len(groups[i]) == 0 {
			groups[i] = append(groups[i], docs[i%len(docs)])
		}
	}

	return groups
}
