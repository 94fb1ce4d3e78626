// Package upload 论文 PDF 的校验、落盘与清理
package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/NoraHere/CMPE180B-TeamA-DBMS/config"
)

// 上传校验错误，消息直接展示在表单上
var (
	ErrTransport = errors.New("Error uploading PDF file.")
	ErrNotPDF    = errors.New("Only PDF files are allowed.")
)

const (
	pdfContentType = "application/pdf"
	sniffLen       = 512
)

var unsafeNameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]`)

// StoredFile 一次成功落盘的结果
type StoredFile struct {
	Name      string // 存储文件名 <unix秒>_<清洗后的原名>
	Path      string // 磁盘路径
	PublicURL string // 对外引用，写入 paper.pdf_link
	PageCount *int
	DOI       *string
}

// Store 本地目录文件存储
type Store struct {
	dir          string
	publicPrefix string
	now          func() time.Time
	logger       *zap.Logger
}

// NewStore 创建文件存储
func NewStore(cfg *config.UploadConfig, logger *zap.Logger) *Store {
	return &Store{
		dir:          cfg.Dir,
		publicPrefix: cfg.PublicPrefix,
		now:          time.Now,
		logger:       logger,
	}
}

// SetClock 替换时间源（测试用）
func (s *Store) SetClock(now func() time.Time) {
	s.now = now
}

// Dir 存储目录
func (s *Store) Dir() string { return s.dir }

// Check 校验上传：传输错误优先，其次按文件头嗅探类型（不看扩展名）
func (s *Store) Check(fh *multipart.FileHeader, transportErr error) error {
	if transportErr != nil || fh == nil {
		return ErrTransport
	}

	f, err := fh.Open()
	if err != nil {
		return ErrTransport
	}
	defer f.Close()

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return ErrTransport
	}
	if http.DetectContentType(head[:n]) != pdfContentType {
		return ErrNotPDF
	}
	return nil
}

// SanitizeName 非 [A-Za-z0-9_.-] 字符替换为下划线
func SanitizeName(name string) string {
	return unsafeNameChars.ReplaceAllString(filepath.Base(name), "_")
}

// Save 将上传文件复制到存储目录，随后尽力读取页数与 DOI
func (s *Store) Save(fh *multipart.FileHeader) (*StoredFile, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return nil, fmt.Errorf("创建上传目录失败: %w", err)
	}

	name, dst, err := s.store(fh)
	if err != nil {
		return nil, fmt.Errorf("保存上传文件失败: %w", err)
	}

	stored := &StoredFile{
		Name:      name,
		Path:      dst,
		PublicURL: path.Join(s.publicPrefix, name),
	}

	meta, err := Inspect(dst)
	if err != nil {
		s.logger.Warn("读取 PDF 元数据失败", zap.String("file", name), zap.Error(err))
	} else {
		stored.PageCount = meta.PageCount
		stored.DOI = meta.DOI
	}
	return stored, nil
}

// Remove 删除已存储文件（事务回滚时的补偿动作），文件不存在视为成功
func (s *Store) Remove(name string) error {
	err := os.Remove(filepath.Join(s.dir, filepath.Base(name)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// maxNameAttempts 同一秒内同名上传的最大序号
const maxNameAttempts = 1000

// store 以独占方式创建目标文件并写入内容
// 名称为 <unix>_<name>，已存在时改用 <unix>_<n>_<name>，每个 StoredFile 独占一个路径
func (s *Store) store(fh *multipart.FileHeader) (string, string, error) {
	src, err := fh.Open()
	if err != nil {
		return "", "", err
	}
	defer src.Close()

	prefix := strconv.FormatInt(s.now().Unix(), 10)
	base := SanitizeName(fh.Filename)

	for n := 0; n < maxNameAttempts; n++ {
		name := prefix + "_" + base
		if n > 0 {
			name = prefix + "_" + strconv.Itoa(n) + "_" + base
		}
		dst := filepath.Join(s.dir, name)

		out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, os.ErrExist) {
			continue
		}
		if err != nil {
			return "", "", err
		}
		if _, err := io.Copy(out, src); err != nil {
			out.Close()
			_ = os.Remove(dst)
			return "", "", err
		}
		if err := out.Close(); err != nil {
			_ = os.Remove(dst)
			return "", "", err
		}
		return name, dst, nil
	}
	return "", "", fmt.Errorf("文件名 %q 冲突次数过多", base)
}
