package collect

import (
	"fmt"
	"strings"

	"docfill/internal/model"
)

const (
	collectTemperature = 0.1
	reviewTemperature  = 0.0
	clarifyTemperature = 0.7
	consultTemperature = 0.3

	reviewHistoryLimit = 6

	offTopicReply      = "Вибачте, я можу відповідати лише на запитання, пов'язані з документами."
	reviewQuestion     = "Чи бажаєте ви щось змінити? Якщо ні, напишіть «Генеруй», «Все вірно» або «Ок»."
	reviewFallback     = "Вибачте, я не зрозумів. " + reviewQuestion
	generateReply      = "Чудово! Генерую документ..."
	updateReply        = "Дані оновлено."
	consultUnavailable = "Вибачте, сервіс тимчасово недоступний."
	clarifySystem      = "Ти ввічливий асистент, що допомагає заповнити документ. Твоя мета: попросити користувача довести дані."
)

func collectPrompt(fieldsContext string, group model.FieldGroup, fallbackQuestion string) string {
	var b strings.Builder
	b.WriteString("Ти асистент, що допомагає заповнити документ. Твоя задача: зібрати поля:\n")
	b.WriteString(fieldsContext)
	if group.Hint != "" {
		b.WriteString("\n\nПІДКАЗКА: ")
		b.WriteString(group.Hint)
	}
	fmt.Fprintf(&b, `

ПРАВИЛА:
1. Якщо користувач ставить питання, відповідай.
2. Якщо надає дані, витягни їх (JSON). Можна повертати й інші поля зі списку, якщо користувач їх назвав.
3. Якщо даних мало, подякуй і запитай решту.

ОФТОП:
Якщо питання не про документи, поверни JSON:
{"action": "chat", "message": "%s %s"}

ФОРМАТ:
{"action": "chat", "message": "..."}
АБО
{"action": "extract", "fields": {"field_name": "value"}}`, offTopicReply, fallbackQuestion)
	return b.String()
}

func reviewPrompt(fieldsContext, answers string) string {
	return fmt.Sprintf(`Ти аналізатор фінального етапу заповнення документа.
Користувач перевіряє дані перед генерацією. Визнач намір користувача, враховуючи історію діалогу.

АЛГОРИТМ:
1. Якщо користувач погоджується ("Все ок", "Генеруй", "Так", "Правильно"), поверни дію "generate".
2. Якщо користувач хоче щось виправити і вказано поле та нове значення, поверни "update".
   Якщо користувач називає тільки значення, а в попередньому повідомленні ти питав про конкретне поле, теж "update".
3. Якщо неясно, поверни "chat".

СПИСОК ПОЛІВ:
%s

ПОТОЧНІ ДАНІ:
%s

ФОРМАТ (JSON):
{"action": "generate", "message": "%s"}
{"action": "update", "fields": {"key": "new_value"}, "message": "Зрозумів, змінюємо [назва поля] на [значення]."}
{"action": "chat", "message": "Уточніть, що саме змінити?"}`, fieldsContext, answers, generateReply)
}

func consultPrompt(documentName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `## Роль
Ти досвідчений український юрист-консультант.

## Правила (СУВОРО):
1. Стиль: діловий, ввічливий.
2. Без технічних термінів.
3. Відповідай ТІЛЬКИ на питання про документи.
   На офтоп відповідай: "%s"`, offTopicReply)
	if documentName != "" {
		fmt.Fprintf(&b, "\n\nМи працюємо з документом: «%s».", documentName)
	}
	return b.String()
}

func clarifyPrompt(filled, missing []string) string {
	filledStr := "нічого"
	if len(filled) > 0 {
		filledStr = strings.Join(filled, ", ")
	}
	missingStr := strings.Join(missing, ", ")
	return fmt.Sprintf(`Ситуація: користувач заповнює форму.
Він щойно надав дані для: %s.
Але ще не вистачає: %s.

Завдання:
1. Коротко підтвердь, що надані дані прийнято.
2. Ввічливо попроси надати те, чого не вистачає (використовуй назви: %s).
3. Пиши українською, природною мовою, одним-двома реченнями, без списків.`, filledStr, missingStr, missingStr)
}

// askFor is the deterministic question naming each field by its human name.
func askFor(names []string) string {
	return fmt.Sprintf("Будь ласка, вкажіть: %s?", strings.Join(names, ", "))
}

func clarifyFallback(names []string) string {
	return fmt.Sprintf("Дані записано. Будь ласка, додайте ще: %s.", strings.Join(names, ", "))
}
