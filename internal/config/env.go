// Package config provides environment-based configuration for the
// newswaters services. Each service family has its own prefix
// (DATABASE_, SEARCH_ENGINE_, INFERENCE_, JOB_, WHISTLER_).
package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// LogEnv holds the process-wide logging settings shared by every service.
type LogEnv struct {
	// Level is the log verbosity level.
	// Env: LOG_LEVEL (default: INFO)
	Level string `envconfig:"LOG_LEVEL" default:"INFO"`

	// Format is the log output format (terminal or json).
	// Env: LOG_FORMAT (default: terminal)
	Format string `envconfig:"LOG_FORMAT" default:"terminal"`
}

// DatabaseEnv holds the relational database connection settings.
type DatabaseEnv struct {
	// Host is the database server host.
	// Env: DATABASE_HOST
	Host string `envconfig:"HOST" required:"true"`

	// Port is the database server port.
	// Env: DATABASE_PORT (default: 5432)
	Port int `envconfig:"PORT" default:"5432"`

	// User is the database user.
	// Env: DATABASE_USER
	User string `envconfig:"USER" required:"true"`

	// Password is the database password.
	// Env: DATABASE_PASSWORD
	Password string `envconfig:"PASSWORD" required:"true"`

	// DB is the database name.
	// Env: DATABASE_DB
	DB string `envconfig:"DB" required:"true"`
}

// URL renders the connection URL understood by the database layer.
func (e DatabaseEnv) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s", e.User, e.Password, e.Host, e.Port, e.DB)
}

// SearchEngineEnv holds the search-engine service settings: its own HTTP
// bind address, the vector database location, the collection layout and
// the full-text index path.
type SearchEngineEnv struct {
	// Host is the search-engine host, used by clients to reach it.
	// Env: SEARCH_ENGINE_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the search-engine HTTP port.
	// Env: SEARCH_ENGINE_PORT (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// VectorHost is the vector database host.
	// Env: SEARCH_ENGINE_VECTOR_HOST
	VectorHost string `envconfig:"VECTOR_HOST"`

	// VectorPort is the vector database HTTP port.
	// Env: SEARCH_ENGINE_VECTOR_PORT
	VectorPort int `envconfig:"VECTOR_PORT" default:"6333"`

	// VectorCollectionNames is the comma-separated list of collections
	// queried by search-similar.
	// Env: SEARCH_ENGINE_VECTOR_COLLECTION_NAMES
	VectorCollectionNames string `envconfig:"VECTOR_COLLECTION_NAMES"`

	// VectorSummaryCollectionName is the collection holding summary
	// embeddings, targeted by upserts without an explicit collection.
	// Env: SEARCH_ENGINE_VECTOR_SUMMARY_COLLECTION_NAME
	VectorSummaryCollectionName string `envconfig:"VECTOR_SUMMARY_COLLECTION_NAME"`

	// VectorKeywordCollectionName is the collection holding keyword
	// embeddings.
	// Env: SEARCH_ENGINE_VECTOR_KEYWORD_COLLECTION_NAME
	VectorKeywordCollectionName string `envconfig:"VECTOR_KEYWORD_COLLECTION_NAME"`

	// VectorSize is the embedding dimension; all collections share it.
	// Env: SEARCH_ENGINE_VECTOR_SIZE (default: 768)
	VectorSize int `envconfig:"VECTOR_SIZE" default:"768"`

	// TextStoragePath is the directory holding the full-text index,
	// created at startup if missing.
	// Env: SEARCH_ENGINE_TEXT_STORAGE_PATH
	TextStoragePath string `envconfig:"TEXT_STORAGE_PATH"`
}

// URL renders the base URL clients use to reach the search engine.
func (e SearchEngineEnv) URL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// VectorURL renders the vector database base URL.
func (e SearchEngineEnv) VectorURL() string {
	return fmt.Sprintf("http://%s:%d", e.VectorHost, e.VectorPort)
}

// CollectionNames splits the configured collection list, preserving order.
func (e SearchEngineEnv) CollectionNames() []string {
	if e.VectorCollectionNames == "" {
		return nil
	}
	parts := strings.Split(e.VectorCollectionNames, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if name := strings.TrimSpace(p); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// InferenceEnv holds the inference facade settings.
type InferenceEnv struct {
	// Host is the inference facade host, used by clients to reach it.
	// Env: INFERENCE_HOST (default: 0.0.0.0)
	Host string `envconfig:"HOST" default:"0.0.0.0"`

	// Port is the inference facade HTTP port.
	// Env: INFERENCE_PORT (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// InstructTemplate wraps instructions before completion; the
	// {instruction} placeholder is substituted.
	// Env: INFERENCE_INSTRUCT_TEMPLATE
	InstructTemplate string `envconfig:"INSTRUCT_TEMPLATE" default:"<s>[INST] {instruction} [/INST]"`

	// LlamaBaseURL is the OpenAI-compatible completion server the facade
	// delegates instructions to.
	// Env: INFERENCE_LLAMA_BASE_URL (default: http://127.0.0.1:8080/v1)
	LlamaBaseURL string `envconfig:"LLAMA_BASE_URL" default:"http://127.0.0.1:8080/v1"`

	// LlamaModel is the model name passed to the completion server.
	// Env: INFERENCE_LLAMA_MODEL
	LlamaModel string `envconfig:"LLAMA_MODEL" default:"mistral-7b-instruct"`

	// Temperature is the completion sampling temperature.
	// Env: INFERENCE_TEMP (default: 0.2)
	Temperature float32 `envconfig:"TEMP" default:"0.2"`

	// EmbedModelPath points at the local ONNX embedding model directory.
	// Env: INFERENCE_EMBED_MODEL_PATH
	EmbedModelPath string `envconfig:"EMBED_MODEL_PATH"`
}

// URL renders the base URL clients use to reach the inference facade.
func (e InferenceEnv) URL() string {
	return fmt.Sprintf("http://%s:%d", e.Host, e.Port)
}

// JobEnv holds the worker settings. Fields shared by several jobs but
// with per-job defaults (ChunkSize, PermitsNum) are pointers so each job
// can tell "unset" from an explicit zero.
type JobEnv struct {
	// CollectItemsNum is how many trailing ids the item sweep covers.
	// Env: JOB_COLLECT_ITEMS_NUM
	CollectItemsNum int `envconfig:"COLLECT_ITEMS_NUM" default:"50000"`

	// CollectItemURLsNum is how many trailing ids the URL sweep covers.
	// Env: JOB_COLLECT_ITEM_URLS_NUM
	CollectItemURLsNum int `envconfig:"COLLECT_ITEM_URLS_NUM" default:"50000"`

	// PermitsNum bounds in-flight fetches within a chunk.
	// Env: JOB_PERMITS_NUM (default: 100 for items, 10 for URLs)
	PermitsNum *int `envconfig:"PERMITS_NUM"`

	// ChunkSize is the sweep chunk length.
	// Env: JOB_CHUNK_SIZE (default: 1000 for collect jobs, 50 for embed jobs)
	ChunkSize *int `envconfig:"CHUNK_SIZE"`

	// ReplicasNum and ReplicaIndex shard the URL sweep across replicas:
	// a replica only fetches ids with id % ReplicasNum == ReplicaIndex.
	// Env: JOB_REPLICAS_NUM (default: 1), JOB_REPLICA_INDEX (default: 0)
	ReplicasNum  int `envconfig:"REPLICAS_NUM" default:"1"`
	ReplicaIndex int `envconfig:"REPLICA_INDEX" default:"0"`

	// SummarizeTextsNum is the per-pass batch size of summarize-texts.
	// Env: JOB_SUMMARIZE_TEXTS_NUM (default: 30)
	SummarizeTextsNum int `envconfig:"SUMMARIZE_TEXTS_NUM" default:"30"`

	// AnalyzeStoryTextsNum is the per-pass batch size of analyze-story-texts.
	// Env: JOB_ANALYZE_STORY_TEXTS_NUM (default: 30)
	AnalyzeStoryTextsNum int `envconfig:"ANALYZE_STORY_TEXTS_NUM" default:"30"`

	// AnalyzeCommentTextsNum is the per-pass batch size of analyze-comment-texts.
	// Env: JOB_ANALYZE_COMMENT_TEXTS_NUM (default: 30)
	AnalyzeCommentTextsNum int `envconfig:"ANALYZE_COMMENT_TEXTS_NUM" default:"30"`

	// AnalyzeCommentTextMinLen / MaxLen bound eligible comment texts.
	// Env: JOB_ANALYZE_COMMENT_TEXT_MIN_LEN (default: 120),
	// JOB_ANALYZE_COMMENT_TEXT_MAX_LEN (default: 4800)
	AnalyzeCommentTextMinLen int `envconfig:"ANALYZE_COMMENT_TEXT_MIN_LEN" default:"120"`
	AnalyzeCommentTextMaxLen int `envconfig:"ANALYZE_COMMENT_TEXT_MAX_LEN" default:"4800"`

	// AnalyzeSummariesNum is the per-pass batch size of analyze-summaries.
	// Env: JOB_ANALYZE_SUMMARIES_NUM (default: 30)
	AnalyzeSummariesNum int `envconfig:"ANALYZE_SUMMARIES_NUM" default:"30"`

	// EmbedSummariesNum / EmbedKeywordsNum cap how many missing ids an
	// embed pass considers.
	// Env: JOB_EMBED_SUMMARIES_NUM, JOB_EMBED_KEYWORDS_NUM
	EmbedSummariesNum int `envconfig:"EMBED_SUMMARIES_NUM" default:"1000"`
	EmbedKeywordsNum  int `envconfig:"EMBED_KEYWORDS_NUM" default:"1000"`

	// TextMinLineLen / TextMaxTotalLen drive text shortening.
	// Env: JOB_TEXT_MIN_LINE_LEN (default: 80),
	// JOB_TEXT_MAX_TOTAL_LEN (default: 4800)
	TextMinLineLen  int `envconfig:"TEXT_MIN_LINE_LEN" default:"80"`
	TextMaxTotalLen int `envconfig:"TEXT_MAX_TOTAL_LEN" default:"4800"`

	// AnalyzeAdditionalTexts / AnalyzeAdditionalSummaries /
	// SummarizeAdditionalTexts top the priority batch up with further
	// candidates when the priority list comes back short.
	// Env: JOB_ANALYZE_ADDITIONAL_TEXTS, JOB_ANALYZE_ADDITIONAL_SUMMARIES,
	// JOB_SUMMARIZE_ADDITIONAL_TEXTS (default: false)
	AnalyzeAdditionalTexts     bool `envconfig:"ANALYZE_ADDITIONAL_TEXTS" default:"false"`
	AnalyzeAdditionalSummaries bool `envconfig:"ANALYZE_ADDITIONAL_SUMMARIES" default:"false"`
	SummarizeAdditionalTexts   bool `envconfig:"SUMMARIZE_ADDITIONAL_TEXTS" default:"false"`

	// FindAnalysesFollowSummaries requires a stored summary when topping
	// up keyword-analysis candidates.
	// Env: JOB_FIND_ANALYSES_FOLLOW_SUMMARIES (default: false)
	FindAnalysesFollowSummaries bool `envconfig:"FIND_ANALYSES_FOLLOW_SUMMARIES" default:"false"`

	// InstructSummaryAnchorQueryMaxWordsCount caps anchor phrase length.
	// Env: JOB_INSTRUCT_SUMMARY_ANCHOR_QUERY_MAX_WORDS_COUNT (default: 20)
	InstructSummaryAnchorQueryMaxWordsCount int `envconfig:"INSTRUCT_SUMMARY_ANCHOR_QUERY_MAX_WORDS_COUNT" default:"20"`

	// InstructSubjectQueryMaxSubjectsNum / MaxWordsCount shape the
	// subject-extraction prompt.
	// Env: JOB_INSTRUCT_SUBJECT_QUERY_MAX_SUBJECTS_NUM (default: 5),
	// JOB_INSTRUCT_SUBJECT_QUERY_MAX_WORDS_COUNT (default: 5)
	InstructSubjectQueryMaxSubjectsNum int `envconfig:"INSTRUCT_SUBJECT_QUERY_MAX_SUBJECTS_NUM" default:"5"`
	InstructSubjectQueryMaxWordsCount  int `envconfig:"INSTRUCT_SUBJECT_QUERY_MAX_WORDS_COUNT" default:"5"`

	// InstructRandomQueryWordsRetentionRate is the fraction of words a
	// random passage keeps.
	// Env: JOB_INSTRUCT_RANDOM_QUERY_WORDS_RETENTION_RATE (default: 0.1)
	InstructRandomQueryWordsRetentionRate float64 `envconfig:"INSTRUCT_RANDOM_QUERY_WORDS_RETENTION_RATE" default:"0.1"`

	// Loop keeps a job sweeping forever with 60 s pauses instead of
	// exiting after one pass.
	// Env: JOB_LOOP (default: false)
	Loop bool `envconfig:"LOOP" default:"false"`
}

// ChunkSizeOr returns the configured chunk size, or fallback when unset.
func (e JobEnv) ChunkSizeOr(fallback int) int {
	if e.ChunkSize != nil {
		return *e.ChunkSize
	}
	return fallback
}

// PermitsNumOr returns the configured permit count, or fallback when unset.
func (e JobEnv) PermitsNumOr(fallback int) int {
	if e.PermitsNum != nil {
		return *e.PermitsNum
	}
	return fallback
}

// WhistlerEnv holds the public search API settings.
type WhistlerEnv struct {
	// Port is the API HTTP port.
	// Env: WHISTLER_PORT (default: 3000)
	Port int `envconfig:"PORT" default:"3000"`

	// Prefix nests all routes under a path prefix when non-empty.
	// Env: WHISTLER_PREFIX (default: "")
	Prefix string `envconfig:"PREFIX" default:""`

	// SearchSimilarLexicalLimit / SemanticLimit cap the fused leaves.
	// Env: WHISTLER_SEARCH_SIMILAR_LEXICAL_LIMIT,
	// WHISTLER_SEARCH_SIMILAR_SEMANTIC_LIMIT (default: 50)
	SearchSimilarLexicalLimit  int `envconfig:"SEARCH_SIMILAR_LEXICAL_LIMIT" default:"50"`
	SearchSimilarSemanticLimit int `envconfig:"SEARCH_SIMILAR_SEMANTIC_LIMIT" default:"50"`

	// SearchSimilarLexicalWeight is the lexical share of the fused score.
	// Env: WHISTLER_SEARCH_SIMILAR_LEXICAL_WEIGHT (default: 0.25)
	SearchSimilarLexicalWeight float64 `envconfig:"SEARCH_SIMILAR_LEXICAL_WEIGHT" default:"0.25"`
}

// LoadLog reads the logging settings from the environment.
func LoadLog() (LogEnv, error) {
	var e LogEnv
	err := envconfig.Process("", &e)
	return e, err
}

// LoadDatabase reads the DATABASE_ settings from the environment.
func LoadDatabase() (DatabaseEnv, error) {
	var e DatabaseEnv
	err := envconfig.Process("DATABASE", &e)
	return e, err
}

// LoadSearchEngine reads the SEARCH_ENGINE_ settings from the environment.
func LoadSearchEngine() (SearchEngineEnv, error) {
	var e SearchEngineEnv
	err := envconfig.Process("SEARCH_ENGINE", &e)
	return e, err
}

// LoadInference reads the INFERENCE_ settings from the environment.
func LoadInference() (InferenceEnv, error) {
	var e InferenceEnv
	err := envconfig.Process("INFERENCE", &e)
	return e, err
}

// LoadJob reads the JOB_ settings from the environment.
func LoadJob() (JobEnv, error) {
	var e JobEnv
	err := envconfig.Process("JOB", &e)
	return e, err
}

// LoadWhistler reads the WHISTLER_ settings from the environment.
func LoadWhistler() (WhistlerEnv, error) {
	var e WhistlerEnv
	err := envconfig.Process("WHISTLER", &e)
	return e, err
}
