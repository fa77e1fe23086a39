package entities

type PredictionFormData struct {
	CropType       string  `json:"cropType" validate:"required"`
	Location       string  `json:"location" validate:"required,notblank"`
	SoilType       string  `json:"soilType" validate:"required"`
	Rainfall       float64 `json:"rainfall" validate:"gte=0"`
	Temperature    float64 `json:"temperature"`
	PesticideUsage bool    `json:"pesticideUsage"`
	FertilizerType string  `json:"fertilizerType" validate:"required"`
	Area           float64 `json:"area" validate:"gt=0"`
}

type Impact string

const (
	ImpactHigh   Impact = "High"
	ImpactMedium Impact = "Medium"
	ImpactLow    Impact = "Low"
)

type Recommendation struct {
	Title                  string  `json:"title"`
	Description            string  `json:"description"`
	Impact                 Impact  `json:"impact" jsonschema:"High, Medium or Low"`
	PotentialYieldIncrease float64 `json:"potentialYieldIncrease" jsonschema:"Estimated percentage increase in yield."`
}

type PredictionResult struct {
	PredictedYield        float64          `json:"predictedYield" jsonschema:"Predicted yield in tons per hectare."`
	YieldUnit             string           `json:"yieldUnit" jsonschema:"Unit of measurement for the yield, e.g., 'tons/hectare'."`
	ConfidenceScore       float64          `json:"confidenceScore" jsonschema:"A score from 0.0 to 1.0 indicating model confidence."`
	Summary               string           `json:"summary" jsonschema:"A brief, human-readable summary of the prediction."`
	WeatherImpactAnalysis string           `json:"weatherImpactAnalysis" jsonschema:"A detailed analysis of how the provided weather forecast might impact the crop yield."`
	Recommendations       []Recommendation `json:"recommendations"`
	RiskFactors           []string         `json:"riskFactors" jsonschema:"Potential risks that could affect the yield."`
}

type IdealConditions struct {
	SoilType         []string `json:"soilType"`
	TemperatureRange string   `json:"temperatureRange" jsonschema:"e.g., 15-25°C"`
	AnnualRainfall   string   `json:"annualRainfall" jsonschema:"e.g., 600-1200 mm"`
}

type CropInfo struct {
	CropName        string          `json:"cropName"`
	Description     string          `json:"description"`
	IdealConditions IdealConditions `json:"idealConditions"`
	CommonPests     []string        `json:"commonPests"`
	GrowingCycle    string          `json:"growingCycle" jsonschema:"e.g., 90-120 days"`
}

// HistoricalPrediction is immutable once appended.
type HistoricalPrediction struct {
	ID       string             `json:"id"`
	Date     string             `json:"date"` // RFC 3339
	FormData PredictionFormData `json:"formData"`
	Result   PredictionResult   `json:"result"`
}
