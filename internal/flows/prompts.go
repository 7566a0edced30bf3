package flows

import (
	"fmt"
	"strings"
	"text/template"
)

const generateJavaCodePrompt = `You are a Java programming expert. Generate Java code based on the user's description.

Description: {{ .Description }}

Ensure the generated code is syntactically correct, well-formatted, and includes necessary comments.

Output:
`

const explainJavaErrorPrompt = `You are an advanced Java diagnostic assistant. Your task is to meticulously analyze the provided Java code for a wide range of issues and provide a detailed explanation.

For each error or significant issue found, provide:
1.  The **exact line number** and, if possible, an **estimated column number** where the issue occurs.
2.  A **clear description** of the error or issue. This includes:
    *   **Syntax errors:** e.g., missing semicolons, incorrect bracket usage.
    *   **Type mismatches:** e.g., assigning a String to an int variable.
    *   **Misspellings:** e.g., "systm.out.println" instead of "System.out.println" for keywords or common API elements.
    *   **Common logical errors:** e.g., potential null pointer exceptions if identifiable from context, infinite loops if apparent, off-by-one errors.
    *   **Significant style issues:** e.g., highly inconsistent indentation or excessive whitespace that severely hampers readability (note Java is not whitespace-sensitive for execution logic but readability is important).
3.  Suggest a **correction** if appropriate.

If multiple errors are found, list each one clearly, preferably in a numbered or bulleted list format for readability.

If no errors are found, explicitly state: "No errors or significant issues found in the provided Java code."

Please note: This is a static analysis of the code. It does not execute the code, so it cannot report runtime-specific values or actual program output. However, it aims to identify issues that would likely cause compilation errors or runtime problems and can describe expected behavior or potential pitfalls based on the static code.

Java code:
{{ .JavaCode }}
`

// jsonReplyInstruction is appended for every structured request. Providers
// with native schema support ignore it; the rest rely on it.
const jsonReplyInstruction = "Respond with a single JSON object matching the requested schema and nothing else."

var (
	generateTemplate = template.Must(template.New("generateJavaCode").Parse(generateJavaCodePrompt))
	explainTemplate  = template.Must(template.New("explainJavaError").Parse(explainJavaErrorPrompt))
)

func renderPrompt(tmpl *template.Template, data any) (string, error) {
	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", tmpl.Name(), err)
	}
	return sb.String(), nil
}
