// Package contentutil holds content-sniffing helpers shared by the command
// executor and the blob reader.
package contentutil

// binarySampleSize is the number of bytes scanned for null bytes, matching git's heuristic.
const binarySampleSize = 8000

// IsBinaryContent checks if content bytes contain binary data by looking for null bytes.
// UTF-16 and UTF-32 BOMs are treated as text.
func IsBinaryContent(content []byte) bool {
	if len(content) >= 2 {
		if (content[0] == 0xFF && content[1] == 0xFE) ||
			(content[0] == 0xFE && content[1] == 0xFF) {
			return false
		}
	}
	if len(content) >= 4 {
		if content[0] == 0x00 && content[1] == 0x00 && content[2] == 0xFE && content[3] == 0xFF {
			return false
		}
	}

	sampleSize := min(len(content), binarySampleSize)
	for i := range sampleSize {
		if content[i] == 0 {
			return true
		}
	}
	return false
}
