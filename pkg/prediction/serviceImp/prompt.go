package serviceImp

import (
	"fmt"
	"strconv"
	"strings"

	"agriyield/entities"
)

const (
	predictionSystemInstruction = "You are an expert agricultural scientist and data analyst specializing in crop yield prediction. " +
		"Your goal is to provide accurate yield estimates, actionable recommendations, and a detailed weather impact analysis " +
		"based on the user's input. Provide your response in a structured JSON format."
	cropInfoSystemInstruction = "You are an expert agricultural botanist. Provide concise, factual information about the requested crop in a structured JSON format."
)

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func weatherSection(snap *entities.WeatherSnapshot) string {
	if snap == nil {
		return `
    **Analysis Task:**
    Based on the farm data, generate a prediction. Since no weather data was provided, the 'weatherImpactAnalysis' should state that the prediction does not account for short-term weather events.
`
	}
	days := make([]string, len(snap.Forecast))
	for i, d := range snap.Forecast {
		days[i] = fmt.Sprintf("- %s: High %s°C, Low %s°C, %s", d.Date, num(d.TempMax), num(d.TempMin), d.Description)
	}
	return fmt.Sprintf(`
    Weather Forecast Data:
    - Current: %s°C, %s
    - 5-Day Forecast:
%s

    **Analysis Task:**
    Based on the farm data AND the weather forecast, generate a prediction.
    Your response MUST include a 'weatherImpactAnalysis' section. This section should be a detailed commentary on how the provided weather (current and forecast) will specifically influence the crop's growth and predicted yield. Discuss potential risks like frost, heat stress, or disease from humidity, and any positive influences.
`, num(snap.Current.Temp), snap.Current.Description, strings.Join(days, "\n"))
}

func referenceSection(notes []string) string {
	if len(notes) == 0 {
		return ""
	}
	var b strings.Builder
	b.WriteString("\nReference notes:\n")
	for _, n := range notes {
		b.WriteString("- ")
		b.WriteString(strings.Join(strings.Fields(n), " "))
		b.WriteString("\n")
	}
	return b.String()
}

func predictionPrompt(f entities.PredictionFormData, snap *entities.WeatherSnapshot, notes []string) string {
	return fmt.Sprintf(`
    You are an expert agricultural scientist. Predict the crop yield and provide recommendations based on the following data.

    Farm Data:
    - Crop Type: %s
    - Location: %s
    - Soil Type: %s
    - Annual Rainfall: %s mm
    - Average Temperature: %s°C
    - Pesticide Usage: %s
    - Fertilizer Type: %s
    - Cultivation Area: %s hectares
%s%s`,
		f.CropType, strings.TrimSpace(f.Location), f.SoilType, num(f.Rainfall), num(f.Temperature),
		yesNo(f.PesticideUsage), f.FertilizerType, num(f.Area), weatherSection(snap), referenceSection(notes))
}

func cropInfoPrompt(cropName string, notes []string) string {
	return fmt.Sprintf("Provide a detailed profile for the crop: %s. Include a general description, ideal growing conditions "+
		"(soil types, temperature range, annual rainfall), common pests and diseases, and the typical growing cycle duration.%s",
		cropName, referenceSection(notes))
}
