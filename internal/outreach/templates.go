package outreach

import "text/template"

var subjectTmpl = template.Must(template.New("subject").Parse(
	`Эко-продукция для ваших мероприятий: {{.Sender.Company}} x {{.Company.Name}}`))

var bodyTmpl = template.Must(template.New("body").Parse(`
Добрый день, компания {{.Company.Name}}, к вам обращается компания «{{.Sender.Company}}».

Мы производим натуральную эко-продукцию из Сибири и хотим предложить вам сотрудничество при организации ваших мероприятий и фуршетов.

Наши популярные позиции:
{{- range .Products}}
- {{.Name}} ({{.Price}})
{{- end}}

Полный ассортимент вы можете найти на нашем сайте {{.Sender.Site}}, а также в приложенном PDF-каталоге.

Будем рады обсудить специальные оптовые условия для вашей компании. Ответьте на это письмо, если предложение вам интересно.

С уважением,
Команда «{{.Sender.Company}}»
`))

var promptTmpl = template.Must(template.New("prompt").Parse(`
Ты менеджер по продажам компании "{{.Sender.Company}}" (сайт: {{.Sender.Site}}).
Напиши коммерческое предложение для компании "{{.Company.Name}}", которая работает в категории "{{.Category}}".
{{- if .Company.Description}}
О компании: {{.Company.Description}}
{{- end}}
Цель: предложить нашу продукцию для их мероприятий (кейтеринг, фуршеты, подарки клиентам).

Требования к письму:
1. Письмо начинается словами: "Добрый день, компания {{.Company.Name}}, к вам обращается компания «{{.Sender.Company}}»."
2. Тон вежливый и профессиональный.
3. Включи в письмо эти позиции:
{{- range .Products}}
- {{.Name}} ({{.Price}})
{{- end}}
4. Упомяни, что полный ассортимент находится в приложенном PDF-файле.
5. Заверши письмо призывом ответить или созвониться.

Верни только JSON без пояснений:
{"subject": "Тема письма", "body": "Текст письма"}
`))
