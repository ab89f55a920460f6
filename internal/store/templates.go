package store

// Supported editor languages.
const (
	LangJavaScript = "javascript"
	LangPython     = "python"
	LangCPP        = "cpp"
)

var defaultTemplates = map[string]string{
	LangJavaScript: `// Welcome to the coding interview!
// Write your JavaScript solution here

function solution(input) {
  // Your code here
  return input;
}

console.log(solution("Hello, World!"));`,
	LangPython: `# Welcome to the coding interview!
# Write your Python solution here

def solution(input):
    # Your code here
    return input

print(solution("Hello, World!"))`,
	LangCPP: `// Welcome to the coding interview!
// Write your C++ solution here

#include <iostream>
using namespace std;

int main() {
    // Your code here
    cout << "Hello, World!" << endl;
    return 0;
}`,
}

// DefaultTemplate returns the starter snippet for lang ("" if unsupported).
func DefaultTemplate(lang string) string { return defaultTemplates[lang] }

// SupportedLanguage reports whether lang has a template.
func SupportedLanguage(lang string) bool {
	_, ok := defaultTemplates[lang]
	return ok
}

// colorPair is a cursor color with a matching translucent selection color.
type colorPair struct {
	Cursor    string
	Selection string
}

var cursorColors = []colorPair{
	{"#e91e63", "rgba(233, 30, 99, 0.3)"},   // pink
	{"#2196f3", "rgba(33, 150, 243, 0.3)"},  // blue
	{"#4caf50", "rgba(76, 175, 80, 0.3)"},   // green
	{"#ff9800", "rgba(255, 152, 0, 0.3)"},   // orange
	{"#9c27b0", "rgba(156, 39, 176, 0.3)"},  // purple
	{"#00bcd4", "rgba(0, 188, 212, 0.3)"},   // cyan
	{"#f44336", "rgba(244, 67, 54, 0.3)"},   // red
	{"#ffeb3b", "rgba(255, 235, 59, 0.3)"},  // yellow
}

// colorFor assigns a palette entry by participant index so colors stay
// consistent for a given join order.
func colorFor(i int) colorPair {
	return cursorColors[i%len(cursorColors)]
}
