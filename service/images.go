package service

import (
	"mime/multipart"

	"go.uber.org/zap"

	"costeo/logger"
)

// ImageStore persists uploaded images.
type ImageStore interface {
	SaveImage(file *multipart.FileHeader, prefix string, id uint) (string, error)
	Delete(name string) error
}

// replaceImage stores file, records the new name with save and only then
// removes the previous file. A failed save removes the new file again.
func replaceImage(store ImageStore, file *multipart.FileHeader, prefix string, id uint, old string, save func(name string) error) error {
	name, err := store.SaveImage(file, prefix, id)
	if err != nil {
		return err
	}
	if err := save(name); err != nil {
		_ = store.Delete(name)
		return err
	}
	removeImage(store, old)
	return nil
}

func removeImage(store ImageStore, name string) {
	if store == nil || name == "" {
		return
	}
	if err := store.Delete(name); err != nil {
		logger.Warn("failed to delete image", zap.String("file", name), zap.Error(err))
	}
}
