package apidocs

import (
	"fmt"
	"strings"
)

// exampleRenderers maps a language name to its usage-sample renderer.
// Adding a language means adding an entry here.
var exampleRenderers = map[string]func(op *Operation) string{
	"curl":       renderCurlExample,
	"python":     renderPythonExample,
	"javascript": renderJavaScriptExample,
}

// requiredParams filters the operation's parameters down to the ones every
// call must pass, which is what the canonical usage samples show.
func requiredParams(op *Operation) []Parameter {
	var out []Parameter
	for _, p := range op.Parameters {
		if p.Required {
			out = append(out, p)
		}
	}
	return out
}

func renderCurlExample(op *Operation) string {
	var b strings.Builder
	b.WriteString("``` curl\n")
	fmt.Fprintf(&b, "curl -sSX %s %s%s", strings.ToUpper(op.Method), exampleSiteURL, op.Endpoint)
	for _, p := range requiredParams(op) {
		fmt.Fprintf(&b, " \\\n    --data-urlencode '%s=<%s>'", p.Name, p.Name)
	}
	b.WriteString("\n```")
	return b.String()
}

func renderPythonExample(op *Operation) string {
	var b strings.Builder
	b.WriteString("``` python\n")
	b.WriteString("import requests\n\n")
	fmt.Fprintf(&b, "response = requests.%s(\n", op.Method)
	fmt.Fprintf(&b, "    \"%s%s\",\n", exampleSiteURL, op.Endpoint)
	params := requiredParams(op)
	if len(params) > 0 {
		b.WriteString("    data={\n")
		for _, p := range params {
			fmt.Fprintf(&b, "        \"%s\": \"<%s>\",\n", p.Name, p.Name)
		}
		b.WriteString("    },\n")
	}
	b.WriteString(")\nprint(response.json())\n```")
	return b.String()
}

func renderJavaScriptExample(op *Operation) string {
	var b strings.Builder
	b.WriteString("``` js\n")
	params := requiredParams(op)
	if len(params) > 0 {
		b.WriteString("const params = new URLSearchParams({\n")
		for _, p := range params {
			fmt.Fprintf(&b, "    %s: \"<%s>\",\n", p.Name, p.Name)
		}
		b.WriteString("});\n\n")
	}
	fmt.Fprintf(&b, "const response = await fetch(\"%s%s\", {\n", exampleSiteURL, op.Endpoint)
	fmt.Fprintf(&b, "    method: \"%s\",\n", strings.ToUpper(op.Method))
	if len(params) > 0 {
		b.WriteString("    body: params,\n")
	}
	b.WriteString("});\nconsole.log(await response.json());\n```")
	return b.String()
}
