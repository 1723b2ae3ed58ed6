// Package jsonstore persiste colecciones completas en un fichero JSON.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// File guarda una lista de T en filePath. Cada escritura reescribe el fichero entero.
type File[T any] struct {
	filePath string
	mu       sync.Mutex // Mutex para evitar race conditions al leer/escribir el archivo.
}

func NewFile[T any](filePath string) *File[T] {
	return &File[T]{filePath: filePath}
}

func (f *File[T]) Path() string { return f.filePath }

// Load devuelve todos los elementos. Fichero inexistente o vacío equivale a lista vacía.
func (f *File[T]) Load() ([]T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read()
}

// Update lee, aplica fn y reescribe bajo el mismo candado.
// Si fn devuelve error no se escribe nada.
func (f *File[T]) Update(fn func(items []T) ([]T, error)) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	items, err := f.read()
	if err != nil {
		return err
	}
	items, err = fn(items)
	if err != nil {
		return err
	}
	return f.write(items)
}

func (f *File[T]) read() ([]T, error) {
	data, err := os.ReadFile(f.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, err
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("corrupt json file %s: %w", f.filePath, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// write pasa por un temporal + rename para no dejar el fichero a medias.
func (f *File[T]) write(items []T) error {
	if items == nil {
		items = []T{}
	}
	data, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.filePath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(f.filePath)+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), f.filePath)
}
