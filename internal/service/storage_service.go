package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"alcie_study_backend/internal/config"
	"alcie_study_backend/internal/util"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// StorageProvider 定义研究图片的通用存储接口
type StorageProvider interface {
	Open(ctx context.Context, filename string) (io.ReadCloser, string, error)
	UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error)
	GetURL(filename string) string
}

// LocalStorageProvider 本地目录存储实现
type LocalStorageProvider struct {
	Config *config.StorageConfig
}

func (p *LocalStorageProvider) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	path := filepath.Join(p.Config.LocalPath, filename)
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	return f, contentTypeOf(filename), nil
}

func (p *LocalStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	dst := filepath.Join(p.Config.LocalPath, filename)
	dir := filepath.Dir(dst)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", err
		}
	}

	if localPath == dst {
		return p.GetURL(filename), nil
	}

	srcFile, err := os.Open(localPath)
	if err != nil {
		return "", err
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return "", err
	}

	return p.GetURL(filename), nil
}

func (p *LocalStorageProvider) GetURL(filename string) string {
	return "/images/" + filename
}

// MinioStorageProvider MinIO存储实现
type MinioStorageProvider struct {
	Config *config.StorageConfig
	Client *minio.Client
}

func NewMinioStorageProvider(cfg *config.StorageConfig) (*MinioStorageProvider, error) {
	client, err := minio.New(cfg.MinioEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.MinioAccessID, cfg.MinioSecret, ""),
		Secure: cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, err
	}
	return &MinioStorageProvider{Config: cfg, Client: client}, nil
}

func (p *MinioStorageProvider) Open(ctx context.Context, filename string) (io.ReadCloser, string, error) {
	obj, err := p.Client.GetObject(ctx, p.Config.MinioBucket, filename, minio.GetObjectOptions{})
	if err != nil {
		return nil, "", err
	}
	// GetObject是惰性的，Stat确认对象确实存在
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, "", err
	}
	return obj, contentTypeOf(filename), nil
}

func (p *MinioStorageProvider) UploadFile(ctx context.Context, filename string, localPath string, contentType string) (string, error) {
	_, err := p.Client.FPutObject(ctx, p.Config.MinioBucket, filename, localPath, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", err
	}
	return p.GetURL(filename), nil
}

func (p *MinioStorageProvider) GetURL(filename string) string {
	return "/" + p.Config.MinioBucket + "/" + filename
}

func contentTypeOf(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	}
	return util.MimeOctetStream
}

// StorageService 研究图片的读取与预置
type StorageService struct {
	Provider StorageProvider
}

func NewStorageService(cfg *config.Config) *StorageService {
	var provider StorageProvider
	if cfg.Storage.Type == util.StorageMinio {
		p, err := NewMinioStorageProvider(&cfg.Storage)
		if err == nil {
			provider = p
		}
	}

	if provider == nil {
		provider = &LocalStorageProvider{Config: &cfg.Storage}
	}

	return &StorageService{Provider: provider}
}

// OpenImage 按image_id打开图片，依次尝试允许的扩展名
func (s *StorageService) OpenImage(ctx context.Context, imageID string) (io.ReadCloser, string, error) {
	if strings.Contains(imageID, "/") || strings.Contains(imageID, "..") {
		return nil, "", util.NewValidationError("invalid image id %q", imageID)
	}

	var lastErr error
	for _, ext := range util.AllowedImageExtensions {
		rc, contentType, err := s.Provider.Open(ctx, imageID+ext)
		if err == nil {
			return rc, contentType, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("image %s not found", imageID)
	}
	return nil, "", lastErr
}

// SyncImages 把本地图片目录预置到当前存储后端，用于MinIO部署前的初始化
func (s *StorageService) SyncImages(ctx context.Context, dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, err
	}

	uploaded := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
			continue
		}
		if _, err := s.Provider.UploadFile(ctx, name, filepath.Join(dir, name), contentTypeOf(name)); err != nil {
			return uploaded, fmt.Errorf("upload %s: %w", name, err)
		}
		uploaded++
	}
	return uploaded, nil
}
