package extract

// SchemaPrompt instructs the model to emit calendar event drafts as a JSON
// array matching the draft schema. Every field is re-validated on receipt;
// the prompt is a request, not a guarantee.
const SchemaPrompt = `Extract scheduling details into a list of Google Calendar event JSON objects. Only respond with valid JSON, don't include comments about the JSON:
[
    {
        "summary": "event title here",
        "location": "event location here (only include if a location is mentioned)",
        "description": "event description here",
        "start": {
            "dateTime": "start date and time here, ISO 8601 with offset",
            "timeZone": "IANA time zone name here"
        },
        "end": {
            "dateTime": "end date and time here, ISO 8601 with offset",
            "timeZone": "IANA time zone name here"
        },
        "attendees": [
            {
                "email": "attendee email here (only include if specific attendees are mentioned)"
            }
        ],
        "reminders": {
            "useDefault": true or false,
            "overrides": [
                {
                    "method": "popup or email",
                    "minutes": minutes before event
                }
            ]
        },
        "colorId": color id here (ensure that the classes are color coded consistently),
        "recurrence": [
            "RRULE:FREQ=DAILY;COUNT=5" (only include if recurrences are mentioned)
        ],
        "extendedProperties": {
            "private": {
                "classID": "course code here (N/A when this is not for a course assignment)",
                "assignmentName": "assignment name here (N/A when this is not for a course assignment)",
                "priority": an int between 1 and 10, 10 being high priority (a final would be a 10, extra credit would be a 1),
                "aiGenerated": true
            }
        }
    }
]`
