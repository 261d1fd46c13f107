package utils

// Chunk is one window of a split document, with its 0-based ordinal.
type Chunk struct {
	Ordinal int
	Text    string
}

// SplitText splits a long string into windows of approximately 'chunkSize'
// characters. Each window after the first starts with the last 'overlap'
// characters of its predecessor, so a mid-word split never loses context.
// Empty input produces no chunks.
func SplitText(text string, chunkSize int, overlap int) []Chunk {
	if text == "" {
		return nil
	}
	runes := []rune(text)
	totalLen := len(runes)

	if totalLen <= chunkSize {
		return []Chunk{{Ordinal: 0, Text: text}}
	}

	step := chunkSize - overlap
	if step <= 0 {
		step = chunkSize // fallback if overlap >= chunkSize
	}

	var chunks []Chunk
	ordinal := 0
	for i := 0; i < totalLen; i += step {
		end := i + chunkSize
		if end > totalLen {
			end = totalLen
		}

		chunks = append(chunks, Chunk{Ordinal: ordinal, Text: string(runes[i:end])})
		ordinal++

		if end == totalLen {
			break
		}
	}

	return chunks
}
