package models

type AssessmentType string

const (
	AssessmentTypeHardSkills   AssessmentType = "hard_skills"
	AssessmentTypeSoftSkills   AssessmentType = "soft_skills"
	AssessmentTypePsychometric AssessmentType = "psychometric"
)

func (t AssessmentType) IsValid() bool {
	switch t {
	case AssessmentTypeHardSkills, AssessmentTypeSoftSkills, AssessmentTypePsychometric:
		return true
	}
	return false
}

type PsychometricType string

const (
	PsychometricMBTI        PsychometricType = "mbti"
	PsychometricDISC        PsychometricType = "disc"
	PsychometricBigFive     PsychometricType = "big_five"
	PsychometricEQ          PsychometricType = "emotional_intelligence"
	PsychometricRorschach   PsychometricType = "rorschach"
	PsychometricMMPI        PsychometricType = "mmpi"
	PsychometricCattell16PF PsychometricType = "cattell_16pf"
	PsychometricHogan       PsychometricType = "hogan"
	PsychometricCaliper     PsychometricType = "caliper"
	PsychometricWonderlic   PsychometricType = "wonderlic"
)

var psychometricTypes = map[PsychometricType]string{
	PsychometricMBTI:        "MBTI - Myers-Briggs Type Indicator",
	PsychometricDISC:        "DISC - Análisis de Comportamiento",
	PsychometricBigFive:     "Big Five - Los Cinco Grandes",
	PsychometricEQ:          "Inteligencia Emocional (EQ)",
	PsychometricRorschach:   "Rorschach - Test de Manchas de Tinta",
	PsychometricMMPI:        "MMPI - Inventario de Personalidad",
	PsychometricCattell16PF: "16PF - 16 Factores de Personalidad",
	PsychometricHogan:       "Hogan - Inventario de Personalidad",
	PsychometricCaliper:     "Caliper - Perfil de Personalidad",
	PsychometricWonderlic:   "Wonderlic - Test de Aptitud Cognitiva",
}

func (t PsychometricType) IsValid() bool {
	_, ok := psychometricTypes[t]
	return ok
}

func (t PsychometricType) Title() string {
	return psychometricTypes[t]
}

// IsLikert - тесты личности без правильного ответа, оцениваются по шкале Ликерта.
// Wonderlic - когнитивный тест, единственный психометрический тип с объективной оценкой
func (t PsychometricType) IsLikert() bool {
	return t.IsValid() && t != PsychometricWonderlic
}

// LikertSentinel - значение поля correct_answer для вопросов без правильного ответа
const LikertSentinel = "LIKERT"

var likertScaleEs = []string{
	"Totalmente en desacuerdo",
	"En desacuerdo",
	"Neutral",
	"De acuerdo",
	"Totalmente de acuerdo",
}

var likertScaleEn = []string{
	"Strongly disagree",
	"Disagree",
	"Neutral",
	"Agree",
	"Strongly agree",
}

// LikertScale возвращает фиксированную 5-балльную шкалу согласия для языка теста
func LikertScale(language string) []string {
	if language == "en" {
		return likertScaleEn
	}
	return likertScaleEs
}

type CompletionReason string

const (
	CompletionNatural   CompletionReason = "natural"    // кандидат ответил на все вопросы
	CompletionTabSwitch CompletionReason = "tab_switch" // принудительное завершение, потеря видимости вкладки
	CompletionExpired   CompletionReason = "expired"    // принудительное завершение, сессия брошена
)

// IsForced - завершение не по ответам на все вопросы
func (r CompletionReason) IsForced() bool {
	return r == CompletionTabSwitch || r == CompletionExpired
}

func (r CompletionReason) Title() string {
	switch r {
	case CompletionNatural:
		return "Завершен"
	case CompletionTabSwitch:
		return "Прерван (смена вкладки)"
	case CompletionExpired:
		return "Прерван (истекло время)"
	}
	return string(r)
}

const (
	// PoolSize - размер пула вопросов теста
	PoolSize = 50
	// AssignmentSize - кол-во вопросов, назначаемых кандидату из пула
	AssignmentSize = 20
	// MinUsableQuestions - минимально допустимое кол-во вопросов от генерации
	MinUsableQuestions = 40
	// QuestionPeriodSeconds - время на один вопрос
	QuestionPeriodSeconds = 40
	// RebalanceMaxGap - допустимый разрыв max-min в распределении правильных ответов
	RebalanceMaxGap = 5
	// TopicMaxLen - максимальная длина темы теста
	TopicMaxLen = 2000
)

var OptionLetters = []string{"A", "B", "C", "D"}
