package services

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"alfredoptarigan/resume-matcher/internal/apperrors"
	"alfredoptarigan/resume-matcher/internal/models"
)

type fakeUploadRepo struct {
	uploads   map[uint]*models.Upload
	texts     map[uint]string
	createErr error
	nextID    uint
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: map[uint]*models.Upload{}, texts: map[uint]string{}}
}

func (f *fakeUploadRepo) add(u models.Upload, text string) {
	f.uploads[u.ID] = &u
	f.texts[u.ID] = text
}

func (f *fakeUploadRepo) CreateWithText(_ context.Context, upload *models.Upload, rawText string) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	upload.ID = f.nextID
	f.add(*upload, rawText)
	return nil
}

func (f *fakeUploadRepo) FindResumeText(_ context.Context, ownerID, uploadID uint) (*models.Upload, string, error) {
	u, ok := f.uploads[uploadID]
	if !ok || u.UserID != ownerID {
		return nil, "", apperrors.NotFound("upload")
	}
	cp := *u
	return &cp, f.texts[uploadID], nil
}

func (f *fakeUploadRepo) ListRecent(_ context.Context, ownerID uint, limit int) ([]models.Upload, error) {
	var out []models.Upload
	for _, u := range f.uploads {
		if u.UserID == ownerID && len(out) < limit {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUploadRepo) CountByOwner(_ context.Context, ownerID uint) (int64, error) {
	var n int64
	for _, u := range f.uploads {
		if u.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

type fakeJobRepo struct {
	jobs     map[uint]*models.JobDescription
	countErr error
}

func (f *fakeJobRepo) FindOwned(_ context.Context, ownerID, jobID uint) (*models.JobDescription, error) {
	j, ok := f.jobs[jobID]
	if !ok || j.UserID != ownerID {
		return nil, apperrors.NotFound("job description")
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobRepo) CountByOwner(_ context.Context, ownerID uint) (int64, error) {
	if f.countErr != nil {
		return 0, f.countErr
	}
	var n int64
	for _, j := range f.jobs {
		if j.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

type recordCall struct {
	ownerID, uploadID uint
	jobID             *uint
	draft             *models.MatchDraft
}

type fakeMatchRepo struct {
	mu        sync.Mutex
	records   []recordCall
	recordErr error

	owned     map[uint]*models.MatchResult
	items     []models.HistoryItem
	total     int64
	avg       *float64
	listArgs  [2]int
	recentArg struct {
		exclude uint
		limit   int
	}
	foundIDs []uint
}

func (f *fakeMatchRepo) Record(_ context.Context, ownerID, uploadID uint, jobID *uint, draft *models.MatchDraft) (*models.MatchResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recordErr != nil {
		return nil, f.recordErr
	}
	f.records = append(f.records, recordCall{ownerID, uploadID, jobID, draft})
	return &models.MatchResult{
		ID:              uint(len(f.records)),
		UploadID:        uploadID,
		JobID:           jobID,
		OverallScore:    draft.OverallScore,
		SkillsScore:     draft.SkillsScore,
		ExperienceScore: draft.ExperienceScore,
		EducationScore:  draft.EducationScore,
		FeedbackPayload: []byte(draft.Payload),
	}, nil
}

func (f *fakeMatchRepo) FindOwned(_ context.Context, ownerID, id uint) (*models.MatchResult, error) {
	m, ok := f.owned[id]
	if !ok || m.Upload.UserID != ownerID {
		return nil, apperrors.NotFound("analysis")
	}
	return m, nil
}

func (f *fakeMatchRepo) List(_ context.Context, _ uint, page, pageSize int) ([]models.HistoryItem, int64, error) {
	f.listArgs = [2]int{page, pageSize}
	return f.items, f.total, nil
}

func (f *fakeMatchRepo) Recent(_ context.Context, _ uint, excludeID uint, limit int) ([]models.HistoryItem, error) {
	f.recentArg.exclude = excludeID
	f.recentArg.limit = limit
	out := []models.HistoryItem{}
	for _, item := range f.items {
		if item.ID != excludeID && len(out) < limit {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) FindItems(_ context.Context, _ uint, ids []uint) ([]models.HistoryItem, error) {
	f.foundIDs = ids
	byID := map[uint]models.HistoryItem{}
	for _, item := range f.items {
		byID[item.ID] = item
	}
	out := []models.HistoryItem{}
	for _, id := range ids {
		if item, ok := byID[id]; ok {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeMatchRepo) CountByOwner(context.Context, uint) (int64, error) {
	return f.total, nil
}

func (f *fakeMatchRepo) AverageScore(context.Context, uint) (*float64, error) {
	return f.avg, nil
}

func (f *fakeMatchRepo) EachWithJobText(context.Context, int, func(*models.MatchResult, uint, string) error) error {
	return nil
}

type fakeGemini struct {
	text    string
	err     error
	prompts []string
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.text, f.err
}

func (f *fakeGemini) GenerateEmbedding(context.Context, string) ([]float32, error) {
	return []float32{0.1, 0.2}, f.err
}

type fakeIndex struct {
	indexed    []uint
	indexErr   error
	related    []uint
	relatedErr error
}

func (f *fakeIndex) InitCollection(context.Context) error { return nil }

func (f *fakeIndex) Index(_ context.Context, _ uint, matchID uint, _ string) error {
	f.indexed = append(f.indexed, matchID)
	return f.indexErr
}

func (f *fakeIndex) Related(context.Context, uint, uint, int) ([]uint, error) {
	return f.related, f.relatedErr
}

func (f *fakeIndex) Close() error { return nil }

type memoryStore struct {
	files   map[string][]byte
	saveErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{files: map[string][]byte{}}
}

func (m *memoryStore) Save(_ context.Context, filename string, src io.Reader) (int64, error) {
	if m.saveErr != nil {
		return 0, m.saveErr
	}
	var buf bytes.Buffer
	n, err := io.Copy(&buf, src)
	if err != nil {
		return 0, err
	}
	m.files[filename] = buf.Bytes()
	return n, nil
}

func (m *memoryStore) Materialize(_ context.Context, filename string) (string, func(), error) {
	if _, ok := m.files[filename]; !ok {
		return "", nil, errors.New("missing")
	}
	return "/mem/" + filename, func() {}, nil
}

func (m *memoryStore) Delete(_ context.Context, filename string) error {
	delete(m.files, filename)
	return nil
}

type fakeExtractor struct {
	text  string
	calls []string
}

func (f *fakeExtractor) Extract(_ context.Context, filePath, fileType string) string {
	f.calls = append(f.calls, fileType+":"+filePath)
	return f.text
}
