package parser

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"litecc/lexer"
)

func parseProgram(t *testing.T, src string) string {
	t.Helper()
	toks := lexer.New(src).Scan()
	prog := Parse(src, toks)
	out, err := ProgramToJSON(prog)
	if err != nil {
		t.Fatalf("ProgramToJSON error: %v", err)
	}
	return out
}

func TestProgramToJSON_GlobalsAndFunctions(t *testing.T) {
	out := parseProgram(t, "int g; int main(){ return 0; }")

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}

	globals, ok := doc["globals"].([]any)
	if !ok || len(globals) != 1 || globals[0] != "g" {
		t.Fatalf("globals = %v", doc["globals"])
	}

	functions, ok := doc["functions"].([]any)
	if !ok || len(functions) != 1 {
		t.Fatalf("functions = %v", doc["functions"])
	}
	fn := functions[0].(map[string]any)
	if fn["name"] != "main" {
		t.Fatalf("function name = %v", fn["name"])
	}
}

func TestProgramToJSON_BinaryExpression(t *testing.T) {
	out := parseProgram(t, "int main(){ return 1+2; }")

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	fn := doc["functions"].([]any)[0].(map[string]any)
	body := fn["body"].([]any)
	ret := body[0].(map[string]any)
	if ret["node"] != "Return" {
		t.Fatalf("expected Return, got %v", ret["node"])
	}
	x := ret["x"].(map[string]any)
	if x["node"] != "Binary" || x["op"] != "+" {
		t.Fatalf("expected Binary '+', got %v", x)
	}
}

func TestProgramToJSON_IfElseAndWhile(t *testing.T) {
	out := parseProgram(t, "int main(){ if (1) return 1; else return 2; while(1) return 0; }")

	var doc map[string]any
	if err := json.Unmarshal([]byte(out), &doc); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	fn := doc["functions"].([]any)[0].(map[string]any)
	body := fn["body"].([]any)
	if len(body) != 2 {
		t.Fatalf("expected 2 statements, got %d", len(body))
	}
	ifNode := body[0].(map[string]any)
	if ifNode["node"] != "If" || ifNode["else"] == nil {
		t.Fatalf("expected If with non-nil else, got %v", ifNode)
	}
	whileNode := body[1].(map[string]any)
	if whileNode["node"] != "While" {
		t.Fatalf("expected While, got %v", whileNode["node"])
	}
}

func TestWriteProgramJSON(t *testing.T) {
	toks := lexer.New("int main(){ return 0; }").Scan()
	prog := Parse("int main(){ return 0; }", toks)

	filePath := filepath.Join(os.TempDir(), "litecc_ast_printer_test.json")
	defer os.Remove(filePath)

	if err := WriteProgramJSON(prog, filePath); err != nil {
		t.Fatalf("WriteProgramJSON error: %v", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if _, ok := doc["functions"]; !ok {
		t.Fatalf("missing functions key in %v", doc)
	}
}
