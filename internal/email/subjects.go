package email

type localizedText map[string]string

var (
	subjectQueued = localizedText{
		"en": "Your brand analysis has been queued",
		"fr": "Votre analyse de marque a été mise en file d'attente",
		"es": "Su análisis de marca ha sido puesto en cola",
		"ar": "تم وضع تحليل علامتك التجارية في قائمة الانتظار",
	}
	subjectResult = localizedText{
		"en": "Your brand analysis is ready",
		"fr": "Votre analyse de marque est prête",
		"es": "Su análisis de marca está listo",
		"ar": "تحليل علامتك التجارية جاهز",
	}
	bodyQueued = localizedText{
		"en": "Our analysis capacity was temporarily exhausted, so your request was queued. We will email you the full analysis as soon as it has been generated.",
		"fr": "Notre capacité d'analyse était temporairement épuisée, votre demande a donc été mise en file d'attente. Nous vous enverrons l'analyse complète par e-mail dès qu'elle aura été générée.",
		"es": "Nuestra capacidad de análisis estaba temporalmente agotada, por lo que su solicitud fue puesta en cola. Le enviaremos el análisis completo por correo electrónico en cuanto se haya generado.",
		"ar": "كانت قدرة التحليل لدينا مستنفدة مؤقتًا، لذلك تم وضع طلبك في قائمة الانتظار. سنرسل لك التحليل الكامل عبر البريد الإلكتروني فور إنشائه.",
	}
	bodyResult = localizedText{
		"en": "The analysis you requested is ready. You can find it below.",
		"fr": "L'analyse que vous avez demandée est prête. Vous la trouverez ci-dessous.",
		"es": "El análisis que solicitó está listo. Lo encontrará a continuación.",
		"ar": "التحليل الذي طلبته جاهز. ستجده أدناه.",
	}
)

func subjectFor(language string, texts localizedText) string {
	if s, ok := texts[language]; ok {
		return s
	}
	return texts["en"]
}

func bodyFor(language string, texts localizedText) string {
	return subjectFor(language, texts)
}
