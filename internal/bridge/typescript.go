package bridge

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dop251/goja"
)

// serviceBootstrap builds a TypeScript language service inside the goja
// runtime, backed by the Go-side file callbacks, and exposes __compile and
// __quickInfo entry points.
const serviceBootstrap = `
var __service = (function () {
	var host = {
		getScriptFileNames: function () { return __scriptNames(); },
		getScriptVersion: function (fileName) { return __scriptVersion(fileName); },
		getScriptSnapshot: function (fileName) {
			var text = __readFile(fileName);
			if (text === undefined || text === null) return undefined;
			return ts.ScriptSnapshot.fromString(text);
		},
		getCurrentDirectory: function () { return ""; },
		getCompilationSettings: function () {
			return {
				target: ts.ScriptTarget.ES2020,
				module: ts.ModuleKind.CommonJS,
				newLine: ts.NewLineKind.LineFeed,
				noEmitOnError: false,
			};
		},
		getDefaultLibFileName: function (options) {
			return __libDir + "/" + ts.getDefaultLibFileName(options);
		},
		fileExists: function (fileName) { return __fileExists(fileName); },
		readFile: function (fileName) { return __readFile(fileName); },
		useCaseSensitiveFileNames: function () { return true; },
	};
	return ts.createLanguageService(host, ts.createDocumentRegistry());
})();

function __compile(fileName) {
	var diagnostics = __service.getSyntacticDiagnostics(fileName)
		.concat(__service.getSemanticDiagnostics(fileName));
	var result = { text: "", diagnostics: [] };
	for (var i = 0; i < diagnostics.length; i++) {
		var d = diagnostics[i];
		var line = -1;
		if (d.file && typeof d.start === "number") {
			line = d.file.getLineAndCharacterOfPosition(d.start).line;
		}
		result.diagnostics.push({
			code: d.code,
			message: ts.flattenDiagnosticMessageText(d.messageText, "\n"),
			line: line,
		});
	}
	if (result.diagnostics.length > 0) {
		return result;
	}
	var output = __service.getEmitOutput(fileName);
	for (var j = 0; j < output.outputFiles.length; j++) {
		if (/\.js$/.test(output.outputFiles[j].name)) {
			result.text = output.outputFiles[j].text;
		}
	}
	return result;
}

function __quickInfo(fileName, position) {
	var info = __service.getQuickInfoAtPosition(fileName, position);
	if (!info) return undefined;
	return {
		name: ts.displayPartsToString(info.displayParts || []),
		comment: ts.displayPartsToString(info.documentation || []),
	};
}
`

// LanguageService is a Compiler backed by the real TypeScript compiler:
// typescript.js is loaded into a dedicated goja runtime and driven through
// a language-service host that resolves files via a FileProvider. The
// virtual eval path is served from the overlay set by each call.
type LanguageService struct {
	vm       *goja.Runtime
	compile  goja.Callable
	quick    goja.Callable
	files    FileProvider
	overlay  map[string]string
	versions map[string]int
}

// NewLanguageService loads the TypeScript compiler from compilerPath
// (typically node_modules/typescript/lib/typescript.js) and builds a
// language service over files. Default library files are resolved from the
// compiler's own directory.
func NewLanguageService(compilerPath string, files FileProvider) (*LanguageService, error) {
	source, err := os.ReadFile(compilerPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read compiler: %w", err)
	}

	ls := &LanguageService{
		vm:       goja.New(),
		files:    files,
		overlay:  make(map[string]string),
		versions: make(map[string]int),
	}

	if _, err := ls.vm.RunScript(filepath.Base(compilerPath), string(source)); err != nil {
		return nil, fmt.Errorf("failed to load compiler: %w", err)
	}
	if v := ls.vm.Get("ts"); v == nil || goja.IsUndefined(v) {
		return nil, fmt.Errorf("compiler at %s did not define the ts namespace", compilerPath)
	}

	if err := ls.installHostCallbacks(filepath.Dir(compilerPath)); err != nil {
		return nil, fmt.Errorf("failed to install host callbacks: %w", err)
	}

	if _, err := ls.vm.RunScript("service-bootstrap.js", serviceBootstrap); err != nil {
		return nil, fmt.Errorf("failed to create language service: %w", err)
	}

	var ok bool
	if ls.compile, ok = goja.AssertFunction(ls.vm.Get("__compile")); !ok {
		return nil, fmt.Errorf("bootstrap did not define __compile")
	}
	if ls.quick, ok = goja.AssertFunction(ls.vm.Get("__quickInfo")); !ok {
		return nil, fmt.Errorf("bootstrap did not define __quickInfo")
	}

	return ls, nil
}

// installHostCallbacks exposes the Go-side file resolution to the host.
func (ls *LanguageService) installHostCallbacks(libDir string) error {
	vm := ls.vm

	readFile := func(call goja.FunctionCall) goja.Value {
		path := call.Argument(0).String()
		if text, ok := ls.read(path); ok {
			return vm.ToValue(text)
		}
		return goja.Undefined()
	}
	if err := vm.Set("__readFile", readFile); err != nil {
		return err
	}

	fileExists := func(call goja.FunctionCall) goja.Value {
		path := call.Argument(0).String()
		_, ok := ls.read(path)
		return vm.ToValue(ok)
	}
	if err := vm.Set("__fileExists", fileExists); err != nil {
		return err
	}

	scriptNames := func(call goja.FunctionCall) goja.Value {
		names := make([]string, 0, len(ls.overlay))
		for name := range ls.overlay {
			names = append(names, name)
		}
		return vm.ToValue(names)
	}
	if err := vm.Set("__scriptNames", scriptNames); err != nil {
		return err
	}

	scriptVersion := func(call goja.FunctionCall) goja.Value {
		path := call.Argument(0).String()
		return vm.ToValue(fmt.Sprintf("%d", ls.versions[path]))
	}
	if err := vm.Set("__scriptVersion", scriptVersion); err != nil {
		return err
	}

	return vm.Set("__libDir", filepath.ToSlash(libDir))
}

// read resolves path against the overlay first, then the file provider.
func (ls *LanguageService) read(path string) (string, bool) {
	if text, ok := ls.overlay[path]; ok {
		return text, true
	}
	if ls.files != nil {
		return ls.files.ReadFile(path)
	}
	return "", false
}

// update replaces the overlay content for path and bumps its version so
// the language service re-reads the snapshot.
func (ls *LanguageService) update(source, path string) {
	ls.overlay[path] = source
	ls.versions[path]++
}

// Compile implements Compiler.
func (ls *LanguageService) Compile(source, path string, lineOffset int) (string, error) {
	ls.update(source, path)

	result, err := ls.compile(goja.Undefined(), ls.vm.ToValue(path))
	if err != nil {
		return "", fmt.Errorf("compiler call failed: %w", err)
	}

	obj := result.ToObject(ls.vm)
	diags := obj.Get("diagnostics").ToObject(ls.vm)
	length := int(diags.Get("length").ToInteger())
	if length > 0 {
		cerr := &CompileError{}
		var text strings.Builder
		for i := 0; i < length; i++ {
			d := diags.Get(fmt.Sprintf("%d", i)).ToObject(ls.vm)
			code := int(d.Get("code").ToInteger())
			message := d.Get("message").String()
			line := int(d.Get("line").ToInteger())

			cerr.Codes = append(cerr.Codes, code)
			text.WriteString(formatDiagnosticLine(path, code, message, line, lineOffset))
			text.WriteString("\n")
		}
		cerr.Text = text.String()
		return "", cerr
	}

	return obj.Get("text").String(), nil
}

// GetTypeInfo implements Compiler.
func (ls *LanguageService) GetTypeInfo(source, path string, position int) (TypeInfo, error) {
	ls.update(source, path)

	result, err := ls.quick(goja.Undefined(), ls.vm.ToValue(path), ls.vm.ToValue(position))
	if err != nil {
		return TypeInfo{}, fmt.Errorf("quick info call failed: %w", err)
	}
	if goja.IsUndefined(result) || goja.IsNull(result) {
		return TypeInfo{}, nil
	}

	obj := result.ToObject(ls.vm)
	return TypeInfo{
		Name:    obj.Get("name").String(),
		Comment: obj.Get("comment").String(),
	}, nil
}

// formatDiagnosticLine renders one diagnostic, translating the compiled
// file's zero-based line into the user's one-based input coordinates via
// lineOffset (negative, minus the lines of prior context).
func formatDiagnosticLine(path string, code int, message string, line, lineOffset int) string {
	if line >= 0 {
		if user := line + lineOffset + 1; user >= 1 {
			return fmt.Sprintf("%s:%d: %s", path, user, FormatDiagnostic(code, message))
		}
	}
	return FormatDiagnostic(code, message)
}
