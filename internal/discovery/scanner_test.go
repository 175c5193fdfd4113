package discovery

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestScanner_Scan(t *testing.T) {
	// Create a temporary directory structure for testing
	tmpDir := t.TempDir()

	// Create test files
	testFiles := []string{
		"src/test/scala/a/UserTest.scala",
		"src/test/scala/a/PaymentSpec.scala",
		"web/src/cart.spec.ts",
		"pkg/store/store_test.go",
		"vendor/some/lib_test.go",
		"node_modules/some/file.test.js",
		".git/hooks/HookTest.scala",
		"src/main/scala/a/User.scala",
		"not_a_test.php",
	}
	for _, file := range testFiles {
		fullPath := filepath.Join(tmpDir, file)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
			t.Fatalf("failed to create dir for %s: %v", file, err)
		}
		if err := os.WriteFile(fullPath, []byte("test"), 0644); err != nil {
			t.Fatalf("failed to create file %s: %v", file, err)
		}
	}

	scanner := NewScanner([]string{"vendor", "node_modules"}, []string{"*Test.scala", "*Spec.scala", "*.spec.ts", "*_test.go"})

	t.Run("scans test files correctly", func(t *testing.T) {
		results, err := scanner.Scan(tmpDir, tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		expected := []string{
			"pkg/store/store_test.go",
			"src/test/scala/a/PaymentSpec.scala",
			"src/test/scala/a/UserTest.scala",
			"web/src/cart.spec.ts",
		}
		if !reflect.DeepEqual(results, expected) {
			t.Errorf("expected %v, got %v", expected, results)
		}
	})

	t.Run("scans a sub directory relative to the project", func(t *testing.T) {
		results, err := scanner.Scan(filepath.Join(tmpDir, "web"), tmpDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(results) != 1 || results[0] != "web/src/cart.spec.ts" {
			t.Errorf("unexpected results %v", results)
		}
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		_, err := scanner.Scan("/non/existent/path", "")
		if err == nil {
			t.Error("expected error for non-existent directory")
		}
	})

	t.Run("returns error for file instead of directory", func(t *testing.T) {
		testFile := filepath.Join(tmpDir, "testfile.txt")
		os.WriteFile(testFile, []byte("test"), 0644)
		_, err := scanner.Scan(testFile, "")
		if err == nil {
			t.Error("expected error for file path")
		}
	})
}

func TestNormalize(t *testing.T) {
	got := Normalize([]string{"b/Test.scala", "./a/Test.scala", "b/Test.scala", " ", "a//Test.scala"})
	expected := []string{"a/Test.scala", "b/Test.scala"}
	if !reflect.DeepEqual(got, expected) {
		t.Errorf("expected %v, got %v", expected, got)
	}
}

func TestScanner_Relative(t *testing.T) {
	scanner := &Scanner{}
	base := filepath.Join(string(filepath.Separator), "app")

	tests := []struct {
		name string
		path string
		want string
	}{
		{"inside base", filepath.Join(base, "it", "ASpec.scala"), "it/ASpec.scala"},
		{"dot-dot prefixed directory inside base", filepath.Join(base, "..fixtures", "ASpec.scala"), "..fixtures/ASpec.scala"},
		{"outside base keeps the path", filepath.Join(string(filepath.Separator), "other", "ASpec.scala"), "/other/ASpec.scala"},
		{"parent of base keeps the path", string(filepath.Separator), "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := scanner.relative(tt.path, base); got != tt.want {
				t.Errorf("relative(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
