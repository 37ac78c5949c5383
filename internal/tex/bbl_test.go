package tex

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInlineBibliography(t *testing.T) {
	const bbl = "\\begin{thebibliography}{1}\n\\bibitem{a} A.\n\\end{thebibliography}\n"

	tests := []struct {
		name    string
		text    string
		want    string
		changed bool
	}{
		{
			name:    "replaces bibliography command",
			text:    "body\n\\bibliography{refs}\n\\end{document}\n",
			want:    "body\n" + bbl + "\n\\end{document}\n",
			changed: true,
		},
		{
			name:    "only the first command",
			text:    "\\bibliography{a}\\bibliography{b}",
			want:    bbl + "\\bibliography{b}",
			changed: true,
		},
		{
			name:    "inserts before end of document",
			text:    "body\n\\end{document}\n",
			want:    "body\n" + bbl + "\\end{document}\n",
			changed: true,
		},
		{
			name:    "commented command is ignored",
			text:    "% \\bibliography{refs}\n\\end{document}",
			want:    "% \\bibliography{refs}\n" + bbl + "\\end{document}",
			changed: true,
		},
		{
			name:    "nowhere to put it",
			text:    "fragment",
			want:    "fragment",
			changed: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, changed := InlineBibliography(tt.text, bbl)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.changed, changed)
		})
	}
}

func TestInlineBibliographyAddsMissingNewline(t *testing.T) {
	got, ok := InlineBibliography(`\end{document}`, "BBL")
	assert.True(t, ok)
	assert.Equal(t, "BBL\n\\end{document}", got)
}
