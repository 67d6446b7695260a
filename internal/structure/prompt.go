package structure

import (
	"fmt"
	"strings"

	"github.com/FranksOps/leadscout/internal/enrich"
)

const (
	// PromptSources is how many results are shown to the model.
	PromptSources = 8
	// PromptContentRunes bounds each result's content in the prompt.
	PromptContentRunes = 600
	promptEmailsPerSrc = 5
)

const promptHeader = `Ты помогаешь собирать данные о компаниях.
По результатам поиска по запросу "%s" составь список РЕАЛЬНЫХ компаний.

ПРАВИЛА:
1. Каждому источнику соответствует ровно ОДНА запись в массиве.
2. Поле "email" заполняй ТОЛЬКО адресом из строки «Email-адреса найденные на сайте» этого источника. Адреса не выдумывай.
3. Если адресов нет, поле "email" равно "".
4. Название компании официальное, с юридической формой (ООО, ИП, АО), если она видна.
5. Агрегаторы и каталоги (2GIS, Яндекс Карты, Avito и подобные) не компании, их пропускай.

Поля каждой записи:
- name: полное название компании
- website: URL сайта
- email: адрес из данных ниже или ""
- phone: телефон из описания или ""
- address: адрес из описания или ""
- description: чем занимается компания, 1-2 предложения

Ответ: ТОЛЬКО JSON-массив, без пояснений.

Результаты поиска:
`

// BuildPrompt renders the extraction prompt for the first PromptSources
// results.
func BuildPrompt(results []enrich.Result, category string) string {
	var b strings.Builder
	fmt.Fprintf(&b, promptHeader, category)

	for i, r := range results {
		if i >= PromptSources {
			break
		}
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "\nИсточник %d: %s\n", i+1, r.Title)
		fmt.Fprintf(&b, "URL: %s\n", r.URL)
		if len(r.Emails) > 0 {
			emails := r.Emails
			if len(emails) > promptEmailsPerSrc {
				emails = emails[:promptEmailsPerSrc]
			}
			fmt.Fprintf(&b, "Email-адреса найденные на сайте: %s\n", strings.Join(emails, ", "))
		} else {
			b.WriteString("Email-адреса на сайте: не найдены\n")
		}
		fmt.Fprintf(&b, "Описание: %s\n", truncateRunes(r.Content, PromptContentRunes))
	}
	return b.String()
}
